// Package service owns the session lifecycle the rest of the core relies
// on: turning a presented token into an identity, and forcing a logout.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"crm/internal/auth/token"
	id "crm/pkg/domain"
	dErrors "crm/pkg/domain-errors"
	"crm/pkg/requestcontext"
)

type TokenService interface {
	Issue(identityID id.IdentityID, sessionID string, expiresIn time.Duration) (string, error)
	Validate(tokenString string) (*token.Claims, error)
}

type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type Service struct {
	tokens      TokenService
	revocations RevocationStore
	tokenTTL    time.Duration
	logger      *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(tokens TokenService, revocations RevocationStore, opts ...Option) (*Service, error) {
	if tokens == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "token service is required")
	}
	if revocations == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "revocation store is required")
	}
	s := &Service{
		tokens:      tokens,
		revocations: revocations,
		tokenTTL:    12 * time.Hour,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StartSession issues a token for identityID under a fresh session id.
func (s *Service) StartSession(ctx context.Context, identityID id.IdentityID) (string, string, error) {
	if identityID.IsNil() {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	sessionID := uuid.NewString()
	tok, err := s.tokens.Issue(identityID, sessionID, s.tokenTTL)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}
	s.logger.InfoContext(ctx, "session started",
		"identity_id", identityID,
		"session_id", sessionID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return tok, sessionID, nil
}

// Authenticate resolves a presented token to its identity and session.
// Revoked sessions are rejected as unauthorized.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (id.IdentityID, string, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return 0, "", err
	}
	identityID, err := claims.IdentityID()
	if err != nil {
		return 0, "", err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		return 0, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check session revocation")
	}
	if revoked {
		return 0, "", dErrors.New(dErrors.CodeUnauthorized, "session has ended")
	}
	return identityID, claims.SessionID, nil
}

// Terminate forces a logout by revoking the session for the remaining
// token lifetime.
func (s *Service) Terminate(ctx context.Context, identityID id.IdentityID, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, sessionID, s.tokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.logger.InfoContext(ctx, "session terminated",
		"identity_id", identityID,
		"session_id", sessionID,
	)
	return nil
}
