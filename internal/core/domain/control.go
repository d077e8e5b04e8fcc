package domain

// LightControl is the local edit buffer for a light. It is seeded once
// from the device attributes and after that only user edits touch it.
// Polls never write here, so a slider mid-drag is never reset.
type LightControl struct {
	Brightness int    `json:"brightness"` // 1-255
	Color      string `json:"color"`      // 6 hex digit RGB
	ColorTemp  int    `json:"color_temp"` // mireds
}

// ClimateControl is the local edit buffer for a climate device.
type ClimateControl struct {
	TargetTemp float64 `json:"target_temp"`
	Mode       string  `json:"mode"`
}

// ServiceCall is a pending hub service invocation
// (POST /api/services/{domain}/{service}).
type ServiceCall struct {
	Domain  string
	Service string
	Data    map[string]any
}
