package directory

import (
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// contextPrefix precedes the YAML payload in the hub's live context.
const contextPrefix = "Live Context: An overview of the areas and the devices in this smart home:"

// rawRecord is one entry of the hub's live context. The hub exports
// heterogeneous shapes per domain (lights carry brightness, switches do
// not); everything beyond names/areas stays an opaque pass-through.
type rawRecord struct {
	Names string
	Areas []string
	State map[string]any
}

// parseContext turns the raw live-context string into records. Empty or
// malformed context yields no records: an empty home is a valid state.
func parseContext(raw string) []rawRecord {
	payload := strings.TrimSpace(strings.TrimPrefix(raw, contextPrefix))
	if payload == "" {
		return nil
	}

	var items []map[string]any
	if err := yaml.Unmarshal([]byte(payload), &items); err != nil {
		log.Warn().Err(err).Msg("Live context is not a device list, treating as empty")
		return nil
	}

	records := make([]rawRecord, 0, len(items))
	for _, item := range items {
		names, _ := item["names"].(string)
		if names == "" {
			continue
		}
		records = append(records, rawRecord{
			Names: names,
			Areas: splitAreas(item["areas"]),
			State: item,
		})
	}
	return records
}

// splitAreas normalizes the hub's area field, which may be a single label,
// a comma-separated string, or absent.
func splitAreas(v any) []string {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	areas := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			areas = append(areas, p)
		}
	}
	return areas
}
