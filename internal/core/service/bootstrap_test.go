package service

import (
	"testing"

	"studiopanel/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func light(attrs map[string]any) domain.Device {
	return domain.Device{ID: "light.kitchen", State: "on", Attributes: attrs}
}

func climate(state string, attrs map[string]any) domain.Device {
	return domain.Device{ID: "climate.living", State: state, Attributes: attrs}
}

func TestLightBootstrapFromAttributes(t *testing.T) {

	require := require.New(t)

	ctrl := EnsureLightControl(light(map[string]any{
		"brightness": float64(128),
		"rgb_color":  []any{float64(255), float64(160), float64(0)},
		"color_temp": float64(250),
	}), nil)

	require.Equal(128, ctrl.Brightness)
	require.Equal("#ffa000", ctrl.Color)
	require.Equal(250, ctrl.ColorTemp)
}

func TestLightBootstrapIdempotent(t *testing.T) {

	require := require.New(t)

	existing := &domain.LightControl{Brightness: 42, Color: "#123456", ColorTemp: 400}

	// a background poll with fresh attributes must not touch the buffer
	got := EnsureLightControl(light(map[string]any{"brightness": float64(255)}), existing)

	require.Same(existing, got)
	require.Equal(42, got.Brightness)
}

func TestLightBootstrapFallbacks(t *testing.T) {

	assert := assert.New(t)

	ctrl := EnsureLightControl(light(map[string]any{
		"brightness": "not-a-number",
		"rgb_color":  []any{"red", "green", "blue"},
	}), nil)

	assert.Equal(DefaultBrightness, ctrl.Brightness)
	assert.Equal(DefaultColor, ctrl.Color)
	assert.Equal(DefaultColorTemp, ctrl.ColorTemp)
}

func TestLightBootstrapNumericString(t *testing.T) {

	assert := assert.New(t)

	ctrl := EnsureLightControl(light(map[string]any{"brightness": "200"}), nil)

	assert.Equal(200, ctrl.Brightness)
}

func TestClimateBootstrapTargetFallbackChain(t *testing.T) {

	assert := assert.New(t)

	// explicit target
	ctrl := EnsureClimateControl(climate("heat", map[string]any{
		"temperature":         float64(21.5),
		"current_temperature": float64(19),
	}), nil)
	assert.Equal(21.5, ctrl.TargetTemp)
	assert.Equal("heat", ctrl.Mode)

	// no target, fall back to measured
	ctrl = EnsureClimateControl(climate("cool", map[string]any{
		"current_temperature": float64(19),
	}), nil)
	assert.Equal(float64(19), ctrl.TargetTemp)

	// nothing usable at all
	ctrl = EnsureClimateControl(climate("unknown", map[string]any{}), nil)
	assert.Equal(DefaultTargetTemp, ctrl.TargetTemp)
	assert.Equal(DefaultHvacMode, ctrl.Mode)
}

func TestClimateBootstrapIdempotent(t *testing.T) {

	require := require.New(t)

	existing := &domain.ClimateControl{TargetTemp: 25, Mode: "heat"}

	got := EnsureClimateControl(climate("cool", map[string]any{
		"temperature": float64(18),
	}), existing)

	require.Same(existing, got)
	require.Equal(float64(25), got.TargetTemp)
	require.Equal("heat", got.Mode)
}
