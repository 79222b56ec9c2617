package service

import (
	"context"
	"sort"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

// Directory is the device catalog the bridge serves from.
type Directory interface {
	Refresh(ctx context.Context) (*model.Snapshot, error)
	Current() *model.Snapshot
	Lookup(ids []string) (map[string]model.Device, []string)
}

// ControlTranslator maps public control calls onto native ones.
type ControlTranslator interface {
	SwitchControl(ctx context.Context, ids []string, on bool) []model.ControlResult
	LightSet(ctx context.Context, ids []string, brightness *int) []model.ControlResult
}

// BridgeService dispatches the public operations. Device lists are small
// and control loops infrequent, so GetDeviceInfo always refreshes.
type BridgeService struct {
	directory  Directory
	translator ControlTranslator
}

var _ ports.BridgePort = (*BridgeService)(nil)

func NewBridgeService(directory Directory, translator ControlTranslator) *BridgeService {
	return &BridgeService{directory: directory, translator: translator}
}

// GetDeviceInfo forces a directory refresh and returns the catalog sorted
// by name for stable output.
func (s *BridgeService) GetDeviceInfo(ctx context.Context) ([]model.DeviceInfo, error) {
	snap, err := s.directory.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	devices := snap.List()
	sort.Slice(devices, func(i, j int) bool { return devices[i].Names < devices[j].Names })

	infos := make([]model.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		infos = append(infos, model.DeviceInfo{ID: d.ID, Names: d.Names, Areas: d.Areas})
	}
	return infos, nil
}

// SwitchControl turns devices on or off, one result per id.
func (s *BridgeService) SwitchControl(ctx context.Context, ids []string, on bool) []model.ControlResult {
	s.ensureCatalog(ctx)
	return s.translator.SwitchControl(ctx, ids, on)
}

// LightSet sets light brightness, one result per id.
func (s *BridgeService) LightSet(ctx context.Context, ids []string, brightness *int) []model.ControlResult {
	s.ensureCatalog(ctx)
	return s.translator.LightSet(ctx, ids, brightness)
}

// ensureCatalog populates the directory once when no refresh has happened
// yet, so control calls work without a prior get_device_info in the same
// process. A failed refresh leaves the ids to surface as NotFound.
func (s *BridgeService) ensureCatalog(ctx context.Context) {
	if len(s.directory.Current().Devices) == 0 {
		_, _ = s.directory.Refresh(ctx)
	}
}
