package homeassistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

// MCPClient speaks the hub's tool-calling endpoint over a single SSE
// session held for the process lifetime. The underlying transport
// multiplexes request ids, so concurrent native calls are safe.
type MCPClient struct {
	mcp     *client.Client
	timeout time.Duration
}

var _ ports.UpstreamPort = (*MCPClient)(nil)

// envelope is the JSON wrapper the hub puts around every native result.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
}

func NewMCPClient(sseURL, token string, timeout time.Duration) (*MCPClient, error) {
	c, err := client.NewSSEMCPClient(sseURL, transport.WithHeaders(map[string]string{
		"Authorization": "Bearer " + token,
	}))
	if err != nil {
		return nil, err
	}
	return &MCPClient{mcp: c, timeout: timeout}, nil
}

// Connect opens the SSE stream and performs the protocol handshake.
func (c *MCPClient) Connect(ctx context.Context) error {
	if err := c.mcp.Start(ctx); err != nil {
		return classify("connect", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "hass-mcp-bridge", Version: "1.0.0"}
	if _, err := c.mcp.Initialize(ctx, initReq); err != nil {
		return classify("initialize", err)
	}

	log.Info().Msg("Connected to hub tool-calling endpoint")
	return nil
}

// CallNative invokes one native operation and returns the unwrapped result.
func (c *MCPClient) CallNative(ctx context.Context, operation string, args map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = operation
	req.Params.Arguments = args

	res, err := c.mcp.CallTool(ctx, req)
	if err != nil {
		return "", classify(operation, err)
	}
	return decodeEnvelope(operation, res)
}

func (c *MCPClient) Close() error {
	return c.mcp.Close()
}

// decodeEnvelope extracts the hub's {"success":…, "result":…} payload from
// the first text content of a tool result.
func decodeEnvelope(operation string, res *mcp.CallToolResult) (string, error) {
	if len(res.Content) == 0 {
		return "", &model.UpstreamError{Kind: model.UpstreamProtocol, Op: operation, Err: fmt.Errorf("empty response content")}
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		return "", &model.UpstreamError{Kind: model.UpstreamProtocol, Op: operation, Err: fmt.Errorf("response content is not text")}
	}
	if res.IsError {
		return "", &model.UpstreamError{Kind: model.UpstreamProtocol, Op: operation, Err: fmt.Errorf("tool error: %s", text.Text)}
	}

	var env envelope
	if err := json.Unmarshal([]byte(text.Text), &env); err != nil {
		return "", &model.UpstreamError{Kind: model.UpstreamProtocol, Op: operation, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if !env.Success {
		return "", &model.UpstreamError{Kind: model.UpstreamProtocol, Op: operation, Err: fmt.Errorf("hub reported failure: %s", string(env.Result))}
	}

	// result is usually a string; anything else passes through as JSON.
	var s string
	if err := json.Unmarshal(env.Result, &s); err == nil {
		return s, nil
	}
	return string(env.Result), nil
}

// classify maps transport failures onto the upstream error kinds: expired
// or revoked credentials must be distinguishable from flaky networking.
func classify(operation string, err error) error {
	kind := model.UpstreamProtocol

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = model.UpstreamTransient
	case errors.As(err, &netErr):
		kind = model.UpstreamTransient
	case isAuthStatus(err):
		kind = model.UpstreamAuth
	}
	return &model.UpstreamError{Kind: kind, Op: operation, Err: err}
}

// isAuthStatus sniffs HTTP auth failures out of transport errors; the SSE
// layer only surfaces them as status text.
func isAuthStatus(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "403") ||
		strings.Contains(strings.ToLower(msg), "unauthorized")
}
