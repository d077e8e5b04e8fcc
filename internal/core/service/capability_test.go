package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorTempOnly(t *testing.T) {

	assert := assert.New(t)

	attrs := map[string]any{
		"supported_color_modes": []any{"color_temp"},
	}

	assert.False(SupportsColor(attrs))
	assert.True(SupportsColorTemp(attrs))
}

func TestColorOnly(t *testing.T) {

	assert := assert.New(t)

	attrs := map[string]any{
		"supported_color_modes": []any{"rgb"},
	}

	assert.True(SupportsColor(attrs))
	assert.False(SupportsColorTemp(attrs))
}

func TestNeither(t *testing.T) {

	assert := assert.New(t)

	attrs := map[string]any{
		"supported_color_modes": []any{"onoff", "brightness"},
	}

	assert.False(SupportsColor(attrs))
	assert.False(SupportsColorTemp(attrs))
}

func TestCurrentModeCounts(t *testing.T) {

	assert := assert.New(t)

	// no advertised mode list, but the light is currently in xy mode
	attrs := map[string]any{
		"color_mode": "xy",
	}

	assert.True(SupportsColor(attrs))
	assert.False(SupportsColorTemp(attrs))
}

func TestMalformedAttributes(t *testing.T) {

	assert := assert.New(t)

	assert.False(SupportsColor(nil))
	assert.False(SupportsColorTemp(nil))

	attrs := map[string]any{
		"supported_color_modes": "rgb", // not a list
		"color_mode":            42,
	}
	assert.False(SupportsColor(attrs))
	assert.False(SupportsColorTemp(attrs))
}
