package service

// Color mode vocabulary of the hub's light API. A light supports color
// when any of these modes is advertised or currently active; color
// temperature has its own disjoint token.
var colorModes = map[string]bool{
	"hs":    true,
	"rgb":   true,
	"rgbw":  true,
	"rgbww": true,
	"xy":    true,
}

var colorTempModes = map[string]bool{
	"color_temp": true,
}

// SupportsColor reports whether the attribute bag advertises a color
// capable light. Missing or malformed attributes mean unsupported.
func SupportsColor(attrs map[string]any) bool {
	return supportsMode(attrs, colorModes)
}

func SupportsColorTemp(attrs map[string]any) bool {
	return supportsMode(attrs, colorTempModes)
}

func supportsMode(attrs map[string]any, tokens map[string]bool) bool {
	if attrs == nil {
		return false
	}
	if modes, ok := attrs["supported_color_modes"].([]any); ok {
		for _, m := range modes {
			if s, ok := m.(string); ok && tokens[s] {
				return true
			}
		}
	}
	if current, ok := attrs["color_mode"].(string); ok && tokens[current] {
		return true
	}
	return false
}
