package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

// longLivedTokenLifespanDays is requested when creating the bridge token.
// The hub owns revocation; the bridge never tracks expiry locally.
const longLivedTokenLifespanDays = 3650

// wsSession is an authenticated websocket session against the hub's
// command API. Commands run one at a time under the mutex; the credential
// flow is strictly sequential so no multiplexing is needed here.
type wsSession struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	nextID int64
}

var _ ports.HubAuthSession = (*wsSession)(nil)

type wsMessage struct {
	ID      int64           `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success bool            `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wsError        `json:"error,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// dialSession connects and completes the auth_required/auth/auth_ok
// handshake.
func dialSession(ctx context.Context, wsURL, accessToken string) (*wsSession, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	s := &wsSession{conn: conn, nextID: 1}

	var greeting wsMessage
	if err := s.read(ctx, &greeting); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read greeting: %w", err)
	}
	if greeting.Type != "auth_required" {
		conn.Close()
		return nil, fmt.Errorf("unexpected greeting %q", greeting.Type)
	}

	if err := conn.WriteJSON(map[string]any{"type": "auth", "access_token": accessToken}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send auth: %w", err)
	}

	var reply wsMessage
	if err := s.read(ctx, &reply); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read auth reply: %w", err)
	}
	if reply.Type != "auth_ok" {
		conn.Close()
		return nil, fmt.Errorf("authentication refused: %s", reply.Type)
	}

	log.Debug().Str("url", wsURL).Msg("Hub websocket session authenticated")
	return s, nil
}

func (s *wsSession) ListRefreshTokens(ctx context.Context) ([]model.RefreshToken, error) {
	result, err := s.command(ctx, map[string]any{"type": "auth/refresh_tokens"})
	if err != nil {
		return nil, err
	}

	var tokens []model.RefreshToken
	if err := json.Unmarshal(result, &tokens); err != nil {
		return nil, fmt.Errorf("decode refresh tokens: %w", err)
	}
	return tokens, nil
}

func (s *wsSession) DeleteRefreshToken(ctx context.Context, id string) error {
	_, err := s.command(ctx, map[string]any{
		"type":             "auth/delete_refresh_token",
		"refresh_token_id": id,
	})
	return err
}

func (s *wsSession) CreateLongLivedToken(ctx context.Context, clientName string) (string, error) {
	result, err := s.command(ctx, map[string]any{
		"type":        "auth/long_lived_access_token",
		"client_name": clientName,
		"lifespan":    longLivedTokenLifespanDays,
	})
	if err != nil {
		return "", err
	}

	var token string
	if err := json.Unmarshal(result, &token); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("hub returned an empty token")
	}
	return token, nil
}

func (s *wsSession) Close() error {
	return s.conn.Close()
}

// command sends one request and waits for its result, skipping unrelated
// events the hub may interleave.
func (s *wsSession) command(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	payload["id"] = id

	if err := s.conn.WriteJSON(payload); err != nil {
		return nil, fmt.Errorf("send command: %w", err)
	}

	for {
		var msg wsMessage
		if err := s.read(ctx, &msg); err != nil {
			return nil, fmt.Errorf("read result: %w", err)
		}
		if msg.Type != "result" || msg.ID != id {
			continue
		}
		if !msg.Success {
			if msg.Error != nil {
				return nil, fmt.Errorf("command failed: %s: %s", msg.Error.Code, msg.Error.Message)
			}
			return nil, fmt.Errorf("command failed")
		}
		return msg.Result, nil
	}
}

func (s *wsSession) read(ctx context.Context, out *wsMessage) error {
	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	return s.conn.ReadJSON(out)
}
