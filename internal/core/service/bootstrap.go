package service

import (
	"fmt"
	"math"
	"strconv"

	"studiopanel/internal/core/domain"
)

// Fallback defaults applied when a device attribute is missing or
// malformed at first sight.
const (
	DefaultBrightness = 180
	DefaultColor      = "#ffffff"
	DefaultColorTemp  = 300 // mireds
	DefaultTargetTemp = 22.0
	DefaultHvacMode   = "auto"
)

// EnsureLightControl seeds the edit buffer for a light the first time
// the device is observed. A non-nil existing buffer is returned
// untouched: bootstrapping is an idempotent seed, never a sync target.
func EnsureLightControl(d domain.Device, existing *domain.LightControl) *domain.LightControl {
	if existing != nil {
		return existing
	}
	return &domain.LightControl{
		Brightness: int(numericAttr(d.Attributes, "brightness", DefaultBrightness)),
		Color:      colorAttr(d.Attributes),
		ColorTemp:  int(numericAttr(d.Attributes, "color_temp", DefaultColorTemp)),
	}
}

// EnsureClimateControl seeds the edit buffer for a climate device.
// Target temperature falls back to the measured temperature, then to a
// fixed default.
func EnsureClimateControl(d domain.Device, existing *domain.ClimateControl) *domain.ClimateControl {
	if existing != nil {
		return existing
	}
	target := numericAttr(d.Attributes, "temperature",
		numericAttr(d.Attributes, "current_temperature", DefaultTargetTemp))
	return &domain.ClimateControl{
		TargetTemp: target,
		Mode:       hvacMode(d),
	}
}

func hvacMode(d domain.Device) string {
	if d.State != "" && d.State != "unknown" && d.State != "unavailable" {
		return d.State
	}
	return DefaultHvacMode
}

func colorAttr(attrs map[string]any) string {
	rgb, ok := attrs["rgb_color"].([]any)
	if !ok || len(rgb) != 3 {
		return DefaultColor
	}
	var c [3]int
	for i, v := range rgb {
		f, ok := coerceNumber(v)
		if !ok || f < 0 || f > 255 {
			return DefaultColor
		}
		c[i] = int(f)
	}
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// numericAttr reads a numeric attribute, accepting numbers and numeric
// strings. Anything else, or a non-finite value, yields the fallback.
func numericAttr(attrs map[string]any, key string, fallback float64) float64 {
	v, ok := attrs[key]
	if !ok {
		return fallback
	}
	f, ok := coerceNumber(v)
	if !ok {
		return fallback
	}
	return f
}

func coerceNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
