package model

// ControlResult is the per-device outcome of a batch control call. A batch
// response contains one entry per requested id; failures never abort the
// rest of the batch.
type ControlResult struct {
	DeviceID string `json:"device_id"`
	Success  bool   `json:"success"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DeviceInfo is the public shape returned by get_device_info.
type DeviceInfo struct {
	ID    string   `json:"id"`
	Names string   `json:"names"`
	Areas []string `json:"areas"`
}
