// Package services contains server-side business logic. This file implements
// AuthService, which orchestrates signup, login and token verification over
// the user repository, the password hasher, the rate limiters and the JWT
// issuer.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/logging"
	"github.com/cohorttools/cohort-api/internal/server/auth"
	"github.com/cohorttools/cohort-api/internal/server/config"
	"github.com/cohorttools/cohort-api/internal/server/models"
	"github.com/cohorttools/cohort-api/internal/server/repositories/repomanager"
)

// AuthService provides the authentication operations:
// - Signup: validate and create users
// - Login: verify credentials and mint a token
// - Verify: check a token and re-fetch its subject
type AuthService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	hasher              auth.PasswordHasher
	signupLimiter       *auth.Limiter
	loginLimiter        *auth.Limiter
	jwtSecret           []byte
	tokenValidityPeriod time.Duration
	logger              logging.Logger
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                  db,
		repomanager:         m,
		hasher:              hasher,
		signupLimiter:       auth.NewLimiter(cfg.SignupRateLimit),
		loginLimiter:        auth.NewLimiter(cfg.LoginRateLimit),
		jwtSecret:           []byte(cfg.SecretKey),
		tokenValidityPeriod: cfg.AuthTokenValidityDuration,
		logger:              logger.With("module", "auth_service"),
	}
}

// Signup registers a new user. clientKey identifies the calling network
// address for rate limiting. Returns the stored user on success, or
// common.ErrorRateLimited, common.ValidationErrors, common.ErrorAlreadyExists
// (duplicate normalized email) or common.ErrorInternal.
func (s *AuthService) Signup(ctx context.Context, clientKey, username, email, password string) (*models.User, error) {
	if !s.signupLimiter.Allow(clientKey) {
		return nil, common.ErrorRateLimited
	}

	if errs := auth.ValidateSignup(username, email, password); len(errs) > 0 {
		return nil, errs
	}

	email = auth.NormalizeEmail(email)
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "email lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: hash,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		// the unique constraint catches the duplicate that raced past the
		// lookup above
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "user creation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Login verifies the credentials and returns a signed token plus the user id.
// A missing account and a wrong password yield the same
// common.ErrorUnauthorized so responses cannot be used for account
// enumeration.
func (s *AuthService) Login(ctx context.Context, clientKey, email, password string) (string, string, error) {
	if !s.loginLimiter.Allow(clientKey) {
		return "", "", common.ErrorRateLimited
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "email lookup failed", "error", err.Error())
		return "", "", common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidityPeriod)
	if err != nil {
		s.logger.Error(ctx, "token generation failed", "error", err.Error())
		return "", "", common.ErrorInternal
	}

	return token, user.ID, nil
}

// Verify checks the token's signature and expiry and re-fetches the subject,
// so a token for a since-deleted account yields common.ErrorNotFound.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorInvalidToken
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return user, nil
}

// GetUser returns the user with the given id, for the authenticated profile
// endpoint.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return user, nil
}
