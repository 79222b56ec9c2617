package model

// Device is one addressable unit derived from the hub's live context.
// ID is a pure function of Names, so downstream clients can cache ids
// across refreshes and process restarts.
type Device struct {
	ID       string         `json:"id"`
	Names    string         `json:"names"`
	Areas    []string       `json:"areas"`
	RawState map[string]any `json:"-"`
}

// Snapshot is an immutable point-in-time device catalog. A snapshot is
// never mutated after construction; refreshes build a new one and swap it
// in wholesale.
type Snapshot struct {
	Devices map[string]Device
}

// List returns the devices of the snapshot in unspecified order.
func (s *Snapshot) List() []Device {
	devices := make([]Device, 0, len(s.Devices))
	for _, d := range s.Devices {
		devices = append(devices, d)
	}
	return devices
}

// RefreshToken is one entry of the hub's refresh-token listing.
type RefreshToken struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	ClientName string `json:"client_name"`
}

// TokenTypeLongLived is the hub-side type of long-lived access tokens.
const TokenTypeLongLived = "long_lived_access_token"
