// Package users contains the user model, storage access, and the
// registration/login flows that issue bearer tokens.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/devlink/internal/common"
	"github.com/dmitrijs2005/devlink/internal/server/auth"
	"github.com/dmitrijs2005/devlink/internal/server/config"
)

type Service struct {
	repo                  Repository
	hasher                *auth.Hasher
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewService(repo Repository, hasher *auth.Hasher, cfg *config.Config) *Service {
	return &Service{
		repo:                  repo,
		hasher:                hasher,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new account and returns a freshly issued token for it.
// A taken email yields common.ErrorAlreadyExists and leaves no record
// behind. The pre-insert lookup is not atomic against a concurrent
// registration with the same email; the unique constraint on the email
// column closes that race at the storage layer.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return "", common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("error checking for existing user: %w", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	return s.generateToken(user.ID)
}

// Login verifies the credentials and returns a new token. Unknown email and
// wrong password produce the same common.ErrorUnauthorized so the response
// does not reveal which check failed. Failure paths have no side effects.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", common.ErrorUnauthorized
	}

	return s.generateToken(user.ID)
}

// GetByID loads the full user record for an already-authenticated subject.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

func (s *Service) generateToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}
