package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

// Resolver resolves device ids against the current directory snapshot.
type Resolver interface {
	Lookup(ids []string) (map[string]model.Device, []string)
}

// Translator maps the simplified public operations onto the hub's native
// calls. Batches are per-id: an unresolved or failing id never aborts the
// rest of the batch.
type Translator struct {
	upstream ports.UpstreamPort
	resolver Resolver
}

func New(upstream ports.UpstreamPort, resolver Resolver) *Translator {
	return &Translator{upstream: upstream, resolver: resolver}
}

// SwitchControl turns every resolved device on or off, one native call per
// device.
func (t *Translator) SwitchControl(ctx context.Context, ids []string, on bool) []model.ControlResult {
	op := ports.OpTurnOff
	if on {
		op = ports.OpTurnOn
	}

	devices, _ := t.resolver.Lookup(ids)
	results := make([]model.ControlResult, 0, len(ids))
	for _, id := range ids {
		dev, ok := devices[id]
		if !ok {
			results = append(results, notFound(id))
			continue
		}
		results = append(results, t.dispatch(ctx, op, dev, nil))
	}
	return results
}

// LightSet sets brightness on every resolved device. nil and 0 both mean
// off; 1-100 turns the light on at that level.
func (t *Translator) LightSet(ctx context.Context, ids []string, brightness *int) []model.ControlResult {
	var invalid *model.ValidationError
	if brightness != nil && (*brightness < 0 || *brightness > 100) {
		invalid = &model.ValidationError{Msg: fmt.Sprintf("brightness %d out of range [0,100]", *brightness)}
	}

	devices, _ := t.resolver.Lookup(ids)
	results := make([]model.ControlResult, 0, len(ids))
	for _, id := range ids {
		if invalid != nil {
			results = append(results, model.ControlResult{DeviceID: id, Error: invalid.Error()})
			continue
		}
		dev, ok := devices[id]
		if !ok {
			results = append(results, notFound(id))
			continue
		}
		if brightness == nil || *brightness == 0 {
			results = append(results, t.dispatch(ctx, ports.OpTurnOff, dev, nil))
			continue
		}
		results = append(results, t.dispatch(ctx, ports.OpLightSet, dev, map[string]any{
			"brightness": *brightness,
		}))
	}
	return results
}

// dispatch issues one native call targeting the device by name and area.
func (t *Translator) dispatch(ctx context.Context, op string, dev model.Device, extra map[string]any) model.ControlResult {
	args := map[string]any{
		"name": dev.Names,
		"area": strings.Join(dev.Areas, ", "),
	}
	for k, v := range extra {
		args[k] = v
	}

	raw, err := t.upstream.CallNative(ctx, op, args)
	if err != nil {
		log.Warn().Err(err).Str("operation", op).Str("device_id", dev.ID).Msg("Native call failed")
		return model.ControlResult{DeviceID: dev.ID, Error: err.Error()}
	}
	return model.ControlResult{DeviceID: dev.ID, Success: true, Result: raw}
}

func notFound(id string) model.ControlResult {
	err := &model.NotFoundError{ID: id}
	return model.ControlResult{DeviceID: id, Error: err.Error()}
}
