package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hass-mcp-bridge/internal/ports"
)

// AuthClient performs the hub's interactive login flow over HTTP and opens
// websocket sessions for token management.
type AuthClient struct {
	baseURL    string
	wsURL      string
	username   string
	password   string
	httpClient *http.Client
}

var _ ports.HubAuthPort = (*AuthClient)(nil)

func NewAuthClient(baseURL, wsURL, username, password string) *AuthClient {
	return &AuthClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		wsURL:      wsURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Login runs the three-step login flow (start flow, submit credentials,
// exchange the authorization code) and returns a short-lived access token.
func (c *AuthClient) Login(ctx context.Context) (string, error) {
	clientID := c.baseURL + "/"

	flowID, err := c.startLoginFlow(ctx, clientID)
	if err != nil {
		return "", err
	}

	code, err := c.submitCredentials(ctx, clientID, flowID)
	if err != nil {
		return "", err
	}

	return c.exchangeCode(ctx, clientID, code)
}

func (c *AuthClient) startLoginFlow(ctx context.Context, clientID string) (string, error) {
	payload := map[string]any{
		"client_id":    clientID,
		"handler":      []any{"homeassistant", nil},
		"redirect_uri": clientID + "?auth_callback=1",
	}

	var resp struct {
		FlowID string `json:"flow_id"`
	}
	if err := c.postJSON(ctx, c.baseURL+"/auth/login_flow", payload, &resp); err != nil {
		return "", fmt.Errorf("start login flow: %w", err)
	}
	if resp.FlowID == "" {
		return "", fmt.Errorf("start login flow: no flow id in response")
	}
	return resp.FlowID, nil
}

func (c *AuthClient) submitCredentials(ctx context.Context, clientID, flowID string) (string, error) {
	payload := map[string]any{
		"username":  c.username,
		"password":  c.password,
		"client_id": clientID,
	}

	var resp struct {
		Type   string            `json:"type"`
		Result string            `json:"result"`
		Errors map[string]string `json:"errors"`
	}
	if err := c.postJSON(ctx, c.baseURL+"/auth/login_flow/"+flowID, payload, &resp); err != nil {
		return "", fmt.Errorf("submit credentials: %w", err)
	}
	if resp.Type != "create_entry" || resp.Result == "" {
		return "", fmt.Errorf("login rejected: %v", resp.Errors)
	}
	return resp.Result, nil
}

func (c *AuthClient) exchangeCode(ctx context.Context, clientID, code string) (string, error) {
	form := url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
		"client_id":  {clientID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("exchange code: status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("exchange code: empty access token")
	}
	return body.AccessToken, nil
}

// OpenSession dials the hub's websocket API and completes the auth
// handshake with the given access token.
func (c *AuthClient) OpenSession(ctx context.Context, accessToken string) (ports.HubAuthSession, error) {
	return dialSession(ctx, c.wsURL, accessToken)
}

func (c *AuthClient) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
