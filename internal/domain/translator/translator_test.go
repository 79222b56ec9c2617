package translator

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

type nativeCall struct {
	Operation string
	Args      map[string]any
}

type recordingUpstream struct {
	mu    sync.Mutex
	calls []nativeCall
	err   error
}

func (r *recordingUpstream) CallNative(ctx context.Context, operation string, args map[string]any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, nativeCall{Operation: operation, Args: args})
	if r.err != nil {
		return "", r.err
	}
	return "ok", nil
}

func (r *recordingUpstream) Close() error { return nil }

type staticResolver map[string]model.Device

func (s staticResolver) Lookup(ids []string) (map[string]model.Device, []string) {
	found := map[string]model.Device{}
	var missing []string
	for _, id := range ids {
		if d, ok := s[id]; ok {
			found[id] = d
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

func testResolver() staticResolver {
	return staticResolver{
		"valid1": {ID: "valid1", Names: "Desk Lamp", Areas: []string{"Office"}},
		"valid2": {ID: "valid2", Names: "Fan", Areas: []string{"Bedroom", "Office"}},
	}
}

func TestSwitchControl_PartialFailure(t *testing.T) {
	up := &recordingUpstream{}
	tr := New(up, testResolver())

	results := tr.SwitchControl(context.Background(), []string{"valid1", "missing1"}, true)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, "valid1", results[0].DeviceID)
	assert.False(t, results[1].Success)
	assert.Equal(t, "missing1", results[1].DeviceID)
	assert.Contains(t, results[1].Error, "not found")

	// Only the resolved id reaches the hub.
	require.Len(t, up.calls, 1)
	assert.Equal(t, ports.OpTurnOn, up.calls[0].Operation)
	assert.Equal(t, "Desk Lamp", up.calls[0].Args["name"])
	assert.Equal(t, "Office", up.calls[0].Args["area"])
}

func TestSwitchControl_Off(t *testing.T) {
	up := &recordingUpstream{}
	tr := New(up, testResolver())

	results := tr.SwitchControl(context.Background(), []string{"valid2"}, false)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	require.Len(t, up.calls, 1)
	assert.Equal(t, ports.OpTurnOff, up.calls[0].Operation)
	assert.Equal(t, "Bedroom, Office", up.calls[0].Args["area"])
}

func TestSwitchControl_UpstreamFailureIsPerID(t *testing.T) {
	up := &recordingUpstream{err: fmt.Errorf("hub unreachable")}
	tr := New(up, testResolver())

	results := tr.SwitchControl(context.Background(), []string{"valid1", "valid2"}, true)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Contains(t, r.Error, "hub unreachable")
	}
	// The batch keeps going past a failing device.
	assert.Len(t, up.calls, 2)
}

func TestLightSet_NilBrightnessTurnsOff(t *testing.T) {
	up := &recordingUpstream{}
	tr := New(up, testResolver())

	results := tr.LightSet(context.Background(), []string{"valid1"}, nil)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	require.Len(t, up.calls, 1)
	assert.Equal(t, ports.OpTurnOff, up.calls[0].Operation)
}

func TestLightSet_ZeroBrightnessTurnsOff(t *testing.T) {
	up := &recordingUpstream{}
	tr := New(up, testResolver())

	zero := 0
	results := tr.LightSet(context.Background(), []string{"valid1"}, &zero)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	require.Len(t, up.calls, 1)
	assert.Equal(t, ports.OpTurnOff, up.calls[0].Operation)
}

func TestLightSet_Level(t *testing.T) {
	up := &recordingUpstream{}
	tr := New(up, testResolver())

	level := 55
	results := tr.LightSet(context.Background(), []string{"valid1"}, &level)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	require.Len(t, up.calls, 1)
	assert.Equal(t, ports.OpLightSet, up.calls[0].Operation)
	assert.Equal(t, 55, up.calls[0].Args["brightness"])
	assert.Equal(t, "Desk Lamp", up.calls[0].Args["name"])
}

func TestLightSet_OutOfRange(t *testing.T) {
	up := &recordingUpstream{}
	tr := New(up, testResolver())

	level := 150
	results := tr.LightSet(context.Background(), []string{"valid1"}, &level)

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "out of range")
	// No native call for a rejected value.
	assert.Empty(t, up.calls)
}

func TestLightSet_MissingDevice(t *testing.T) {
	up := &recordingUpstream{}
	tr := New(up, testResolver())

	level := 20
	results := tr.LightSet(context.Background(), []string{"missing1", "valid2"}, &level)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)
	require.Len(t, up.calls, 1)
	assert.Equal(t, ports.OpLightSet, up.calls[0].Operation)
}
