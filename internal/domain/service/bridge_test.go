package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hass-mcp-bridge/internal/domain/model"
)

type fakeDirectory struct {
	snapshot   *model.Snapshot
	refreshes  int
	refreshErr error
}

func (f *fakeDirectory) Refresh(ctx context.Context) (*model.Snapshot, error) {
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.snapshot, nil
}

func (f *fakeDirectory) Current() *model.Snapshot { return f.snapshot }

func (f *fakeDirectory) Lookup(ids []string) (map[string]model.Device, []string) {
	found := map[string]model.Device{}
	var missing []string
	for _, id := range ids {
		if d, ok := f.snapshot.Devices[id]; ok {
			found[id] = d
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

type fakeTranslator struct {
	switchCalls int
	lightCalls  int
}

func (f *fakeTranslator) SwitchControl(ctx context.Context, ids []string, on bool) []model.ControlResult {
	f.switchCalls++
	results := make([]model.ControlResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, model.ControlResult{DeviceID: id, Success: true})
	}
	return results
}

func (f *fakeTranslator) LightSet(ctx context.Context, ids []string, brightness *int) []model.ControlResult {
	f.lightCalls++
	results := make([]model.ControlResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, model.ControlResult{DeviceID: id, Success: true})
	}
	return results
}

func snapshotWith(devices ...model.Device) *model.Snapshot {
	m := map[string]model.Device{}
	for _, d := range devices {
		m[d.ID] = d
	}
	return &model.Snapshot{Devices: m}
}

func TestGetDeviceInfo_AlwaysRefreshes(t *testing.T) {
	dir := &fakeDirectory{snapshot: snapshotWith(
		model.Device{ID: "b", Names: "Lamp", Areas: []string{"Office"}},
		model.Device{ID: "a", Names: "Fan", Areas: []string{"Bedroom"}},
	)}
	s := NewBridgeService(dir, &fakeTranslator{})

	infos, err := s.GetDeviceInfo(context.Background())
	require.NoError(t, err)
	_, err = s.GetDeviceInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, dir.refreshes)
	require.Len(t, infos, 2)
	// Sorted by name for stable output.
	assert.Equal(t, "Fan", infos[0].Names)
	assert.Equal(t, "Lamp", infos[1].Names)
}

func TestGetDeviceInfo_EmptyHub(t *testing.T) {
	dir := &fakeDirectory{snapshot: snapshotWith()}
	s := NewBridgeService(dir, &fakeTranslator{})

	infos, err := s.GetDeviceInfo(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestControl_LazyInitialRefresh(t *testing.T) {
	dir := &fakeDirectory{snapshot: snapshotWith()}
	tr := &fakeTranslator{}
	s := NewBridgeService(dir, tr)

	s.SwitchControl(context.Background(), []string{"x"}, true)
	assert.Equal(t, 1, dir.refreshes)
	assert.Equal(t, 1, tr.switchCalls)

	// A populated catalog is not refreshed again on control calls.
	dir.snapshot = snapshotWith(model.Device{ID: "x", Names: "Lamp"})
	s.SwitchControl(context.Background(), []string{"x"}, false)
	s.LightSet(context.Background(), []string{"x"}, nil)
	assert.Equal(t, 1, dir.refreshes)
	assert.Equal(t, 2, tr.switchCalls)
	assert.Equal(t, 1, tr.lightCalls)
}
