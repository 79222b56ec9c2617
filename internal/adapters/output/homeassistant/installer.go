package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

// mcpServerDomain is the hub integration providing the tool-calling
// endpoint the bridge depends on.
const mcpServerDomain = "mcp_server"

// Installer ensures the hub has the tool-calling integration set up.
// Safe to run on every startup: an existing install is left untouched.
type Installer struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.InstallerPort = (*Installer)(nil)

func NewInstaller(baseURL string) *Installer {
	return &Installer{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// EnsureCapability checks the hub's config entries for the integration and
// starts its config flow when absent. "Already installed" is success.
func (i *Installer) EnsureCapability(ctx context.Context, token string) (bool, error) {
	installed, err := i.isInstalled(ctx, token)
	if err != nil {
		return false, &model.SetupError{Op: "list config entries", Err: err}
	}
	if installed {
		log.Debug().Str("domain", mcpServerDomain).Msg("Integration already installed")
		return true, nil
	}

	if err := i.install(ctx, token); err != nil {
		return false, &model.SetupError{Op: "install integration", Err: err}
	}
	log.Info().Str("domain", mcpServerDomain).Msg("Integration installed")
	return true, nil
}

func (i *Installer) isInstalled(ctx context.Context, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.baseURL+"/api/config/config_entries/entry", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}

	var entries []struct {
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Domain == mcpServerDomain {
			return true, nil
		}
	}
	return false, nil
}

func (i *Installer) install(ctx context.Context, token string) error {
	payload, err := json.Marshal(map[string]any{
		"handler":               mcpServerDomain,
		"show_advanced_options": false,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/api/config/config_entries/flow", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("config flow status %d", resp.StatusCode)
	}

	var flow struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&flow); err != nil {
		return err
	}
	switch flow.Type {
	case "create_entry":
		return nil
	case "abort":
		// single_instance_allowed means another startup won the race.
		return nil
	default:
		return fmt.Errorf("unexpected flow result %q", flow.Type)
	}
}
