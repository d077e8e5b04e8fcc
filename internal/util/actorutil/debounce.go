package actorutil

import (
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/scheduler"
)

// Debouncer is a per-key trailing-edge debounce table. Scheduling a
// key cancels any pending timer for that key and arms a new one, so
// within one key only the most recent scheduled message survives.
// Keys are independent: debouncing one device's apply never cancels
// another's.
type Debouncer struct {
	scheduler *scheduler.TimerScheduler
	pending   map[string]scheduler.CancelFunc
}

func NewDebouncer(ctx actor.Context) *Debouncer {
	return &Debouncer{
		scheduler: scheduler.NewTimerScheduler(ctx),
		pending:   map[string]scheduler.CancelFunc{},
	}
}

// Schedule arms (or re-arms) the timer for key. After the quiet
// interval, message is sent to pid.
func (d *Debouncer) Schedule(key string, delay time.Duration, pid *actor.PID, message any) {
	if cancel, ok := d.pending[key]; ok {
		cancel()
	}
	d.pending[key] = d.scheduler.SendOnce(delay, pid, message)
}

// Settle clears the bookkeeping for a key whose timer has fired.
func (d *Debouncer) Settle(key string) {
	delete(d.pending, key)
}

// Cancel drops a single pending timer without firing it.
func (d *Debouncer) Cancel(key string) {
	if cancel, ok := d.pending[key]; ok {
		cancel()
		delete(d.pending, key)
	}
}

// CancelAll releases every pending timer. Called on teardown so no
// periodic work leaks past the owning actor.
func (d *Debouncer) CancelAll() {
	for key, cancel := range d.pending {
		cancel()
		delete(d.pending, key)
	}
}
