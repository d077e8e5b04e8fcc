package service

import (
	"testing"

	"studiopanel/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dev(id string) domain.Device {
	return domain.Device{ID: id, State: "on", Attributes: map[string]any{}}
}

func ids(views []domain.DeviceView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestSortFollowsOrderSequence(t *testing.T) {

	require := require.New(t)

	devices := []domain.Device{dev("light.b"), dev("light.a"), dev("switch.c")}
	order := []string{"switch.c", "light.b", "light.a"}

	sorted := SortDevices(devices, order)

	require.Equal("switch.c", sorted[0].ID)
	require.Equal("light.b", sorted[1].ID)
	require.Equal("light.a", sorted[2].ID)
}

func TestUnorderedDevicesSortLexically(t *testing.T) {

	require := require.New(t)

	// none of these are in the order sequence; snapshot order is
	// deliberately scrambled
	devices := []domain.Device{dev("light.z"), dev("light.a"), dev("light.m")}

	sorted := SortDevices(devices, []string{"climate.x"})

	require.Equal("light.a", sorted[0].ID)
	require.Equal("light.m", sorted[1].ID)
	require.Equal("light.z", sorted[2].ID)
}

func TestOrderedBeforeUnordered(t *testing.T) {

	require := require.New(t)

	devices := []domain.Device{dev("light.a"), dev("light.z")}

	sorted := SortDevices(devices, []string{"light.z"})

	require.Equal("light.z", sorted[0].ID)
	require.Equal("light.a", sorted[1].ID)
}

func TestAppendNewKeepsExistingPositions(t *testing.T) {

	require := require.New(t)

	order := []string{"light.a", "light.b"}
	devices := []domain.Device{dev("light.new2"), dev("light.b"), dev("light.new1")}

	got := AppendNew(order, devices)

	// existing sequence untouched, new ids appended in snapshot order
	require.Equal([]string{"light.a", "light.b", "light.new2", "light.new1"}, got)

	// a second poll with the same snapshot changes nothing
	require.Equal(got, AppendNew(got, devices))
}

func TestResolveVisibilityAndOverlay(t *testing.T) {

	assert := assert.New(t)

	devices := []domain.Device{dev("light.a"), dev("light.b"), dev("climate.c")}
	s := domain.NewSettings()
	s.Order = []string{"light.a", "light.b", "climate.c"}
	s.Hidden = []string{"light.b"}
	s.Names["light.a"] = "Reading lamp"
	s.Categories["climate.c"] = "Studio"

	model := Resolve(devices, s)

	assert.Equal([]string{"light.a", "climate.c"}, ids(model.Visible))
	assert.Equal([]string{"light.a", "light.b", "climate.c"}, ids(model.All))
	assert.Equal("Reading lamp", model.All[0].Name)
	assert.True(model.All[1].Hidden)
	assert.Equal("Lights", model.All[1].Category)
	assert.Equal("Studio", model.All[2].Category)
}

func TestResolveDefaultCategories(t *testing.T) {

	assert := assert.New(t)

	devices := []domain.Device{dev("media_player.tv"), dev("vacuum.robo"), dev("binary_sensor.door")}

	model := Resolve(devices, domain.NewSettings())

	byID := map[string]string{}
	for _, v := range model.All {
		byID[v.ID] = v.Category
	}
	assert.Equal("Media", byID["media_player.tv"])
	assert.Equal("Other", byID["vacuum.robo"])
	assert.Equal("Sensors", byID["binary_sensor.door"])
}

func TestResolveInfersLightCapabilities(t *testing.T) {

	assert := assert.New(t)

	colorLight := domain.Device{ID: "light.rgb", State: "on", Attributes: map[string]any{
		"supported_color_modes": []any{"rgb"},
	}}
	tempLight := domain.Device{ID: "light.ct", State: "on", Attributes: map[string]any{
		"supported_color_modes": []any{"color_temp"},
	}}

	model := Resolve([]domain.Device{colorLight, tempLight, dev("switch.s")}, domain.NewSettings())

	byID := map[string]domain.DeviceView{}
	for _, v := range model.All {
		byID[v.ID] = v
	}
	assert.True(byID["light.rgb"].SupportsColor)
	assert.False(byID["light.rgb"].SupportsColorTemp)
	assert.True(byID["light.ct"].SupportsColorTemp)
	assert.False(byID["light.ct"].SupportsColor)
	assert.False(byID["switch.s"].SupportsColor)
}

func TestCategoryListComposition(t *testing.T) {

	require := require.New(t)

	s := domain.NewSettings()
	s.CustomCategories = []string{"Studio", "Lights"}
	s.Categories["light.a"] = "Attic"
	s.Categories["light.b"] = "Studio"

	model := Resolve(nil, s)

	// defaults first, then customs, then used ones, deduplicated
	require.Equal(append(DefaultCategories, "Studio", "Attic"), model.Categories)
}
