package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avdeyev/taskboard/internal/models"
)

const (
	// AccessTokenHeader carries the bearer token on every
	// authenticated request.
	AccessTokenHeader = "x-access-token"

	// RequestIDHeader echoes the id assigned to the request.
	RequestIDHeader = "X-Request-ID"

	userCtxKey   = "user"
	userIDCtxKey = "user_id"
)

// HandleAuthMiddleware verifies the bearer token and injects the
// resolved user into the request context. Missing, malformed, expired
// or stale tokens all abort with 401.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	token := c.GetHeader(AccessTokenHeader)
	if token == "" {
		h.logger.Warn().Msg("access token header required")
		abort(c, newUnauthorizedError(errTokenMissing.Error()))
		return
	}

	user, err := h.auth.Verify(c, token)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to verify token")
		abort(c, newUnauthorizedError(errTokenInvalid.Error()))
		return
	}

	c.Set(userCtxKey, user)
	c.Set(userIDCtxKey, user.ID)
	c.Next()
}

func (h *handlerImpl) HandleRequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	c.Header(RequestIDHeader, requestID)
	c.Next()
}

func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userCtxKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func currentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(userIDCtxKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}
