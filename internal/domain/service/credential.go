package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

// CredentialService owns the single long-lived bearer credential of the
// bridge. The credential is loaded from the cache when present; otherwise
// it is created through an interactive login against the hub and persisted
// exactly once. The hub owns revocation: a stale cached token is not
// validated here and surfaces as an auth-kind upstream error at call time.
type CredentialService struct {
	repo       ports.TokenRepository
	auth       ports.HubAuthPort
	clientName string

	mu      sync.Mutex
	current string
}

func NewCredentialService(repo ports.TokenRepository, auth ports.HubAuthPort, clientName string) *CredentialService {
	return &CredentialService{repo: repo, auth: auth, clientName: clientName}
}

// GetOrCreateToken returns the cached credential, creating one on the hub
// when no cache entry exists.
func (s *CredentialService) GetOrCreateToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != "" {
		return s.current, nil
	}

	cached, err := s.repo.Load()
	if err != nil {
		return "", &model.AuthError{Op: "read token cache", Err: err}
	}
	if cached != "" {
		log.Debug().Msg("Using cached long-lived token")
		s.current = cached
		return cached, nil
	}

	token, err := s.createToken(ctx)
	if err != nil {
		return "", err
	}
	if err := s.repo.Save(token); err != nil {
		return "", &model.AuthError{Op: "persist token", Err: err}
	}
	s.current = token
	return token, nil
}

// createToken runs the full acquisition flow: login, revoke any orphaned
// token carrying our label, create a fresh one. The hub never re-exposes
// an existing token's secret, so idempotence comes from the lookup-and-
// revoke step plus the local cache.
func (s *CredentialService) createToken(ctx context.Context) (string, error) {
	accessToken, err := s.auth.Login(ctx)
	if err != nil {
		return "", &model.AuthError{Op: "login", Err: err}
	}

	session, err := s.auth.OpenSession(ctx, accessToken)
	if err != nil {
		return "", &model.AuthError{Op: "open session", Err: err}
	}
	defer session.Close()

	tokens, err := session.ListRefreshTokens(ctx)
	if err != nil {
		return "", &model.AuthError{Op: "list refresh tokens", Err: err}
	}
	for _, t := range tokens {
		if t.Type != model.TokenTypeLongLived || t.ClientName != s.clientName {
			continue
		}
		log.Info().Str("token_id", t.ID).Str("client_name", t.ClientName).Msg("Revoking orphaned long-lived token")
		if err := session.DeleteRefreshToken(ctx, t.ID); err != nil {
			return "", &model.AuthError{Op: "delete refresh token", Err: err}
		}
	}

	log.Info().Str("client_name", s.clientName).Msg("Creating long-lived token")
	token, err := session.CreateLongLivedToken(ctx, s.clientName)
	if err != nil {
		return "", &model.AuthError{Op: "create long-lived token", Err: err}
	}
	return token, nil
}

// Invalidate drops the in-memory credential and deletes the cache entry,
// forcing a fresh acquisition on the next start. Used when the upstream
// reports the credential is no longer valid.
func (s *CredentialService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ""
	if err := s.repo.Delete(); err != nil {
		log.Warn().Err(err).Msg("Failed to delete token cache")
		return
	}
	log.Info().Msg("Token cache invalidated")
}
