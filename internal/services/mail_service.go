package services

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/avdeyev/taskboard/internal/config"
)

type smtpMailService struct {
	logger zerolog.Logger
	cfg    config.SMTPConfig
}

// NewSMTPMailService sends mail through the configured SMTP relay.
// With an empty host every send is a logged no-op, which keeps local
// setups working without a mail server.
func NewSMTPMailService(logger zerolog.Logger, cfg config.SMTPConfig) MailService {
	return &smtpMailService{
		logger: logger,
		cfg:    cfg,
	}
}

func (s *smtpMailService) SendWelcomeEmail(username, email string) error {
	if s.cfg.Host == "" {
		s.logger.Debug().
			Str("email", email).
			Msg("mail disabled, skipping welcome email")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to To-Do App!")
	m.SetBody("text/html", fmt.Sprintf(
		"<h1>Welcome, %s!</h1><p>Thank you for registering.</p>", username))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	err := d.DialAndSend(m)
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	s.logger.Debug().
		Str("email", email).
		Msg("sent welcome email")
	return nil
}
