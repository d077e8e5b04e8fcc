package domain

import "strings"

// Device is one hub entity snapshot as returned by GET /api/states.
// Devices are remote-owned: the panel never mutates them, it only
// overlays local customization on top.
type Device struct {
	ID         string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// Domain returns the category-defining prefix of the entity id
// ("light" for "light.kitchen").
func (d Device) Domain() string {
	if i := strings.IndexByte(d.ID, '.'); i >= 0 {
		return d.ID[:i]
	}
	return d.ID
}

func (d Device) FriendlyName() string {
	if name, ok := d.Attributes["friendly_name"].(string); ok && name != "" {
		return name
	}
	return d.ID
}

// DeviceView is a device plus its resolved customization overlay and
// inferred control capabilities.
type DeviceView struct {
	Device
	Name              string `json:"name"`
	Category          string `json:"category"`
	Hidden            bool   `json:"hidden"`
	SupportsColor     bool   `json:"supports_color"`
	SupportsColorTemp bool   `json:"supports_color_temp"`
}

// RenderModel is the resolved, ordered device list handed to the
// presentation layer.
type RenderModel struct {
	Visible    []DeviceView `json:"visible"`
	All        []DeviceView `json:"all"`
	Categories []string     `json:"categories"`
}
