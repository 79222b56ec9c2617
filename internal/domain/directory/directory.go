package directory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hass-mcp-bridge/internal/domain/model"
	"hass-mcp-bridge/internal/ports"
)

// Directory normalizes the hub's live context into an addressable catalog.
// The current snapshot is swapped atomically, so readers always observe a
// fully-formed catalog. Concurrent refreshes coalesce onto one upstream
// call.
type Directory struct {
	upstream ports.UpstreamPort
	current  atomic.Pointer[model.Snapshot]
	group    singleflight.Group
}

func New(upstream ports.UpstreamPort) *Directory {
	d := &Directory{upstream: upstream}
	d.current.Store(&model.Snapshot{Devices: map[string]model.Device{}})
	return d
}

// Current returns the snapshot installed by the last successful refresh.
func (d *Directory) Current() *model.Snapshot {
	return d.current.Load()
}

// Refresh re-fetches the live context and replaces the snapshot wholesale.
func (d *Directory) Refresh(ctx context.Context) (*model.Snapshot, error) {
	v, err, _ := d.group.Do("refresh", func() (any, error) {
		raw, err := d.upstream.CallNative(ctx, ports.OpGetLiveContext, nil)
		if err != nil {
			return nil, err
		}
		snap := buildSnapshot(parseContext(raw))
		d.current.Store(snap)
		log.Debug().Int("devices", len(snap.Devices)).Msg("Device directory refreshed")
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Snapshot), nil
}

// Lookup resolves ids against the current snapshot. Unresolved ids come
// back in missing, in request order.
func (d *Directory) Lookup(ids []string) (map[string]model.Device, []string) {
	snap := d.Current()
	found := make(map[string]model.Device, len(ids))
	var missing []string
	for _, id := range ids {
		if dev, ok := snap.Devices[id]; ok {
			found[id] = dev
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// DeviceID computes the stable id for a device name string.
func DeviceID(names string) string {
	sum := md5.Sum([]byte(names))
	return hex.EncodeToString(sum[:])
}

func buildSnapshot(records []rawRecord) *model.Snapshot {
	devices := make(map[string]model.Device, len(records))
	for _, rec := range records {
		id := DeviceID(rec.Names)
		dev, ok := devices[id]
		if !ok {
			dev = model.Device{ID: id, Names: rec.Names, RawState: rec.State}
		}
		dev.Areas = unionAreas(dev.Areas, rec.Areas)
		devices[id] = dev
	}
	return &model.Snapshot{Devices: devices}
}

// unionAreas merges two area sets, keeping the result sorted so the merge
// outcome is independent of record order.
func unionAreas(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, set := range [][]string{a, b} {
		for _, area := range set {
			if area == "" {
				continue
			}
			if _, ok := seen[area]; ok {
				continue
			}
			seen[area] = struct{}{}
			merged = append(merged, area)
		}
	}
	sort.Strings(merged)
	return merged
}
