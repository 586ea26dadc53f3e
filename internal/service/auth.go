package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
)

// AuthService issues bearer tokens for username-only logins. An account is
// created on first login (create-if-absent keyed by username); there is no
// password.
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	jwtExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecretKey string, jwtExpiryHours int) (*AuthService, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 24 * 7
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecretKey),
		jwtExpiry: time.Duration(jwtExpiryHours) * time.Hour,
	}, nil
}

// Login resolves a username to an account, creating it when absent, and
// returns a signed token together with the user.
func (s *AuthService) Login(ctx context.Context, username string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 50 {
		return "", nil, fmt.Errorf("%w: username must be 1-50 characters", ErrValidation)
	}
	logCtx := logrus.WithField("username", username)

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			logCtx.WithError(err).Error("Login: failed to look up user")
			return "", nil, ErrTransient
		}
		user = &domain.User{Username: username}
		if err := s.userRepo.Save(ctx, user); err != nil {
			// Lost a create race with a concurrent first login; the row
			// exists now, so read it back.
			if errors.Is(err, repository.ErrDuplicateEntry) {
				user, err = s.userRepo.FindByUsername(ctx, username)
			}
			if err != nil {
				logCtx.WithError(err).Error("Login: failed to create user")
				return "", nil, ErrTransient
			}
		} else {
			logCtx.WithField("user_id", user.ID).Info("New user created on first login")
		}
	}

	token, err := s.generateJWT(user)
	if err != nil {
		logCtx.WithError(err).Error("Login: failed to sign token")
		return "", nil, ErrTransient
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in")
	return token, user, nil
}

// GetUser loads an account by id; used to attach the verified identity to a
// socket connection after token verification.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, ErrTransient
	}
	return user, nil
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtExpiry).Unix(),
		"iat":      time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
