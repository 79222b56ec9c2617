package ports

import (
	"context"

	"hass-mcp-bridge/internal/domain/model"
)

// Native operations exposed by the hub's tool-calling integration.
const (
	OpGetLiveContext = "GetLiveContext"
	OpTurnOn         = "HassTurnOn"
	OpTurnOff        = "HassTurnOff"
	OpLightSet       = "HassLightSet"
)

// UpstreamPort is the authenticated invocation channel to the hub's native
// operations. Implementations must be safe for concurrent calls over the
// single session.
type UpstreamPort interface {
	CallNative(ctx context.Context, operation string, args map[string]any) (string, error)
	Close() error
}

// HubAuthPort performs the interactive login against the hub and opens an
// administrative session for token management.
type HubAuthPort interface {
	// Login runs the username/password flow and returns a short-lived
	// access token.
	Login(ctx context.Context) (string, error)
	// OpenSession authenticates a websocket session with the given token.
	OpenSession(ctx context.Context, accessToken string) (HubAuthSession, error)
}

// HubAuthSession wraps the hub's token-management commands.
type HubAuthSession interface {
	ListRefreshTokens(ctx context.Context) ([]model.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, id string) error
	CreateLongLivedToken(ctx context.Context, clientName string) (string, error)
	Close() error
}

// InstallerPort ensures the hub exposes the tool-calling integration.
type InstallerPort interface {
	EnsureCapability(ctx context.Context, token string) (bool, error)
}
