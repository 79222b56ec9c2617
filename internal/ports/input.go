package ports

import (
	"context"

	"hass-mcp-bridge/internal/domain/model"
)

// BridgePort is the downstream-facing contract the public tools dispatch to.
type BridgePort interface {
	// GetDeviceInfo forces a directory refresh and returns the catalog.
	GetDeviceInfo(ctx context.Context) ([]model.DeviceInfo, error)
	// SwitchControl turns the given devices on or off, one result per id.
	SwitchControl(ctx context.Context, ids []string, on bool) []model.ControlResult
	// LightSet sets light brightness; nil or 0 means off.
	LightSet(ctx context.Context, ids []string, brightness *int) []model.ControlResult
}
