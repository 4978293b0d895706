package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/avdeyev/taskboard/internal/config"
	v1 "github.com/avdeyev/taskboard/internal/delivery/http/v1"
	"github.com/avdeyev/taskboard/internal/services"
	"github.com/avdeyev/taskboard/internal/storage/postgres"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Content-Type", "Authorization", v1.AccessTokenHeader}
	router.Use(cors.New(corsCfg))

	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()

	userStore := postgres.NewUserStore(globalLogger, globalPostgresPool)
	taskStore := postgres.NewTaskStore(globalLogger, globalPostgresPool)

	tokenService := services.NewTokenService(
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.TokenTTL,
	)
	mailService := services.NewSMTPMailService(globalLogger, cfg.SMTP)
	authService := services.NewAuthService(globalLogger, userStore, tokenService, mailService)
	taskService := services.NewTaskService(globalLogger, taskStore)

	handler := v1.New(globalLogger, authService, taskService)
	router.Use(handler.HandleRequestIDMiddleware)

	apiRouter := router.Group("/api")
	apiRouter.POST("/register", handler.HandleRegister)
	apiRouter.POST("/login", handler.HandleLogin)
	apiRouter.GET("/user", handler.HandleAuthMiddleware, handler.HandleGetUser)

	taskRouter := router.Group("/tasks", handler.HandleAuthMiddleware)
	taskRouter.GET("", handler.HandleGetTasks)
	taskRouter.POST("", handler.HandleCreateTask)
	taskRouter.PUT("/reorder", handler.HandleReorderTasks)
	taskRouter.PUT("/:id", handler.HandleUpdateTask)
	taskRouter.DELETE("/:id", handler.HandleDeleteTask)
}
