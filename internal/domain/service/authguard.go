package service

import (
	"context"
	"errors"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

// Invalidator drops a credential the hub reported invalid.
type Invalidator interface {
	Invalidate()
}

// AuthGuard decorates an upstream port and invalidates the cached
// credential whenever a call fails with an auth-kind error, so the next
// start re-runs acquisition instead of looping on a revoked token.
type AuthGuard struct {
	next        ports.UpstreamPort
	invalidator Invalidator
}

var _ ports.UpstreamPort = (*AuthGuard)(nil)

func NewAuthGuard(next ports.UpstreamPort, invalidator Invalidator) *AuthGuard {
	return &AuthGuard{next: next, invalidator: invalidator}
}

func (g *AuthGuard) CallNative(ctx context.Context, operation string, args map[string]any) (string, error) {
	raw, err := g.next.CallNative(ctx, operation, args)
	if err != nil {
		var ue *model.UpstreamError
		if errors.As(err, &ue) && ue.Kind == model.UpstreamAuth {
			g.invalidator.Invalidate()
		}
	}
	return raw, err
}

func (g *AuthGuard) Close() error { return g.next.Close() }
