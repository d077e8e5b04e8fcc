package mqtt

import (
	"fmt"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_PANEL_STATE  = "panel_state"
	SENSOR_ID_DEVICE_COUNT = "device_count"
	SENSOR_ID_POLL_PROBLEM = "poll_problem"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	Icon              string            `json:"icon,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
}

func panelDevice(deviceId string) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:      []string{deviceId},
		Version: versioninfo.Short(),
		Model:   "Studio Panel",
		Name:    "Studio Panel",
	}
}

func HADiscoverySensorTopic(deviceId, sensorId string) string {
	return fmt.Sprintf("homeassistant/sensor/%s/%s/config", deviceId, sensorId)
}

func HADiscoveryBinarySensorTopic(deviceId, sensorId string) string {
	return fmt.Sprintf("homeassistant/binary_sensor/%s/%s/config", deviceId, sensorId)
}

// PanelStateDiscoveryMessage announces the panel availability entity,
// backed by the LWT topic.
func PanelStateDiscoveryMessage(client *MQTTClient, deviceId string) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:      panelDevice(deviceId),
		StateTopic:  client.PanelStateTopic(),
		DeviceClass: "connectivity",
		Name:        "Panel state",
		UniqueId:    fmt.Sprintf("%s_%s", deviceId, SENSOR_ID_PANEL_STATE),
		Platform:    "mqtt",
		PayloadOn:   MQTT_PAYLOAD_ONLINE,
		PayloadOff:  MQTT_PAYLOAD_OFFLINE,
	}
}

func DeviceCountDiscoveryMessage(client *MQTTClient, deviceId string) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:         panelDevice(deviceId),
		StateTopic:     client.SensorStateTopic(SENSOR_ID_DEVICE_COUNT),
		StateClass:     "measurement",
		AvTopic:        client.PanelStateTopic(),
		EntityCategory: "diagnostic",
		Name:           "Device count",
		UniqueId:       fmt.Sprintf("%s_%s", deviceId, SENSOR_ID_DEVICE_COUNT),
		Platform:       "mqtt",
		Icon:           "mdi:counter",
	}
}

func PollProblemDiscoveryMessage(client *MQTTClient, deviceId string) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:         panelDevice(deviceId),
		StateTopic:     client.BinarySensorStateTopic(SENSOR_ID_POLL_PROBLEM),
		DeviceClass:    "problem",
		AvTopic:        client.PanelStateTopic(),
		EntityCategory: "diagnostic",
		Name:           "Poll problem",
		UniqueId:       fmt.Sprintf("%s_%s", deviceId, SENSOR_ID_POLL_PROBLEM),
		Platform:       "mqtt",
		PayloadOn:      MQTT_PAYLOAD_ON,
		PayloadOff:     MQTT_PAYLOAD_OFF,
	}
}
