package events

import (
	"studiopanel/internal/core/domain"
)

// Events published on the actor system event stream. The session actor
// consumes snapshot and error events to update its display state; the
// MQTT announcer mirrors them to the broker when enabled.

type SnapshotEvent struct {
	Devices []domain.Device
}

// PollErrorEvent is a silent poll failure. It never interrupts the
// loop; the latest one is kept in a status slot until a poll succeeds.
type PollErrorEvent struct {
	Err error
}

type FlushResultEvent struct {
	Err error
}

type ConnectionEvent struct {
	Connected bool
}
