package admin

import (
	"context"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/auth"
	apperrors "github.com/akeren/multiverse-waitlist/pkg/errors"
)

const (
	MessageInvalidPassword = "Invalid password"
	MessageUnauthorized    = "Unauthorized"
	MessageLoggedOut       = "Logged out"
	MessageLogoutFailed    = "Failed to log out"
)

// TokenManager issues and validates admin session tokens.
type TokenManager interface {
	Issue() (*auth.Token, error)
	Parse(raw string) (*auth.Claims, error)
}

//go:generate mockgen -source=service.go -destination=mock_service.go -package=admin

type AdminService interface {
	// Login exchanges the shared secret for a session token.
	Login(ctx context.Context, password string) (*auth.Token, error)
	// Authenticate validates a bearer token and checks it has not been revoked.
	Authenticate(ctx context.Context, rawToken string) (*auth.Claims, error)
	// Logout revokes the token until it would have expired.
	Logout(ctx context.Context, claims *auth.Claims) error
}

type adminService struct {
	logger   *log.Logger
	verifier auth.SecretVerifier
	tokens   TokenManager
	denylist auth.Denylist
}

func NewAdminService(logger *log.Logger, verifier auth.SecretVerifier, tokens TokenManager, denylist auth.Denylist) AdminService {
	return &adminService{
		logger:   logger,
		verifier: verifier,
		tokens:   tokens,
		denylist: denylist,
	}
}

func (s *adminService) Login(ctx context.Context, password string) (*auth.Token, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if !s.verifier.Verify(password) {
		logger.Warn("Admin login rejected")
		return nil, apperrors.NewUnauthorizedError(MessageInvalidPassword, nil)
	}

	token, err := s.tokens.Issue()
	if err != nil {
		logger.Error("Failed to issue admin token", "error", err)
		return nil, apperrors.NewInternalServerError("", err)
	}

	logger.Info("Admin login succeeded", "token_id", token.ID, "expires_at", token.ExpiresAt)
	return token, nil
}

func (s *adminService) Authenticate(ctx context.Context, rawToken string) (*auth.Claims, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		logger.Debug("Rejected admin token", "error", err)
		return nil, apperrors.NewUnauthorizedError(MessageUnauthorized, err)
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// Fail closed when the denylist cannot be read.
		logger.Error("Failed to read token denylist", "error", err)
		return nil, apperrors.NewUnauthorizedError(MessageUnauthorized, err)
	}
	if revoked {
		logger.Info("Revoked admin token presented", "token_id", claims.ID)
		return nil, apperrors.NewUnauthorizedError(MessageUnauthorized, auth.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *adminService) Logout(ctx context.Context, claims *auth.Claims) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if claims == nil || claims.ID == "" {
		return apperrors.NewUnauthorizedError(MessageUnauthorized, auth.ErrInvalidToken)
	}

	until := time.Now()
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}

	if err := s.denylist.Revoke(ctx, claims.ID, until); err != nil {
		logger.Error("Failed to revoke admin token", "token_id", claims.ID, "error", err)
		return apperrors.NewInternalServerError(MessageLogoutFailed, err)
	}

	logger.Info("Admin token revoked", "token_id", claims.ID)
	return nil
}
