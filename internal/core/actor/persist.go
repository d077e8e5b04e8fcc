package actor

import (
	"fmt"
	"time"

	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/events"
	"studiopanel/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

const persistKey = "settings"

// PersistActor is the debounced persistence gate. Every customization
// mutation lands here with a full document snapshot; bursts collapse
// into a single PUT after the quiet interval. Nothing is flushed until
// the gate is armed by a completed initial load, which is what keeps a
// fresh session from overwriting the stored overlay with empty
// defaults. Documents queued while the gate was shut are dropped when
// it arms: they predate the load and can only be stale.
type PersistActor struct {
	behavior  actor.Behavior
	debouncer *actorutil.Debouncer

	storeActor  *actor.PID
	eventStream *eventstream.EventStream
	quiet       time.Duration
	pending     *domain.Settings
	armed       bool

	logger *zap.Logger
}

type flushTick struct {
}

func NewPersistActor(storeActor *actor.PID, eventStream *eventstream.EventStream, quiet time.Duration, logger *zap.Logger) *PersistActor {
	act := &PersistActor{
		behavior:    actor.NewBehavior(),
		storeActor:  storeActor,
		eventStream: eventStream,
		quiet:       quiet,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_PERSIST, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *PersistActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PersistActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.debouncer = actorutil.NewDebouncer(ctx)
	case *actor.Stopping:
		state.debouncer.CancelAll()
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_PERSIST,
			Healthy: true,
			State:   "idle",
		})
	case domain.AllowFlushRequest:
		state.logger.Debug("persist@default gate armed")
		state.armed = true
		// anything queued before the load completed describes pre-load
		// state and must not overwrite the freshly loaded document
		if state.pending != nil {
			state.pending = nil
			state.debouncer.Cancel(persistKey)
		}
	case domain.PersistSettingsRequest:
		settings := msg.Settings
		state.pending = &settings
		state.debouncer.Schedule(persistKey, state.quiet, ctx.Self(), flushTick{})
	case flushTick:
		state.debouncer.Settle(persistKey)
		if !state.armed || state.pending == nil {
			// gate still shut; the queued document is dropped on arming
			return
		}
		doc := *state.pending
		state.pending = nil
		state.logger.Debug("persist@default flush")
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.storeActor, domain.SaveSettingsRequest{Settings: doc}, 20*time.Second), func(err error) any {
			return domain.SaveSettingsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			}
		})
	case domain.SaveSettingsResponse:
		// flush failures are surfaced but never retried here; the next
		// mutation's debounce cycle is the retry path
		if msg.HasResponseError() {
			state.logger.Warn("persist@default flush failed", zap.Error(msg.GetResponseError()))
		}
		state.eventStream.Publish(events.FlushResultEvent{Err: msg.GetResponseError()})
	default:
		state.logger.Debug("persist@default ignore", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}
