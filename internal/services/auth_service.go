package services

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/avdeyev/taskboard/internal/models"
	"github.com/avdeyev/taskboard/internal/storage"
)

type authServiceImpl struct {
	logger zerolog.Logger
	users  storage.UserStore
	tokens TokenService
	mail   MailService
}

func NewAuthService(
	logger zerolog.Logger,
	users storage.UserStore,
	tokens TokenService,
	mail MailService,
) AuthService {
	return &authServiceImpl{
		logger: logger,
		users:  users,
		tokens: tokens,
		mail:   mail,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	// Username and email uniqueness are checked independently so the
	// caller learns which of the two is taken.
	_, err := s.users.GetUserByUsername(ctx, params.Username)
	if err == nil {
		s.logger.Warn().
			Str("username", params.Username).
			Msg("username already exists")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, err
	}

	_, err = s.users.GetUserByEmail(ctx, params.Email)
	if err == nil {
		s.logger.Warn().
			Str("email", params.Email).
			Msg("email already exists")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	user := &models.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	err = s.users.CreateUser(ctx, user)
	if err != nil {
		// The pre-checks race with concurrent registrations; the
		// unique constraints are the backstop.
		switch {
		case errors.Is(err, storage.ErrUsernameTaken):
			return nil, ErrUsernameTaken
		case errors.Is(err, storage.ErrEmailTaken):
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	err = s.mail.SendWelcomeEmail(user.Username, user.Email)
	if err != nil {
		// Best effort: a mail failure never rolls back registration.
		s.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to send welcome email")
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("registered user")
	return user, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.logger.Warn().
				Str("username", username).
				Msg("user not found")
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Warn().
			Int64("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrUserPasswordMismatch
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue token")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Msg("logged in")
	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authServiceImpl) Verify(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("failed to parse token")
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.logger.Warn().
				Int64("user_id", userID).
				Msg("token user no longer exists")
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
