package actor

import (
	"fmt"
	"time"

	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/events"
	"studiopanel/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// PollActor drives the silent refresh loop. Once started it fetches
// the device snapshot immediately and then on a fixed interval,
// publishing outcomes on the event stream. Failures never stop the
// loop; the next tick is the retry. The next tick is armed only after
// a fetch completes, so slow hubs cannot pile up requests.
type PollActor struct {
	behavior  actor.Behavior
	stash     *actorutil.Stash
	scheduler *scheduler.TimerScheduler

	hubActor    *actor.PID
	eventStream *eventstream.EventStream
	interval    time.Duration
	polling     bool
	cancelNext  scheduler.CancelFunc

	logger *zap.Logger
}

type pollTick struct {
}

func NewPollActor(hubActor *actor.PID, eventStream *eventstream.EventStream, interval time.Duration, logger *zap.Logger) *PollActor {
	act := &PollActor{
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		hubActor:    hubActor,
		eventStream: eventStream,
		interval:    interval,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_POLL, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *PollActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.scheduler = scheduler.NewTimerScheduler(ctx)
	case *actor.Stopping:
		state.stopPolling()
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLL,
			Healthy: true,
			State:   pollStateName(state.polling),
		})
	case domain.StartPollRequest:
		if state.polling {
			return
		}
		state.logger.Debug("poll@default start")
		state.polling = true
		state.fetch(ctx)
	case domain.StopPollRequest:
		state.logger.Debug("poll@default stop")
		state.stopPolling()
	case pollTick:
		if state.polling {
			state.fetch(ctx)
		}
	case domain.FetchStatesResponse:
		if msg.HasResponseError() {
			state.logger.Debug("poll@default fetch error", zap.Error(msg.GetResponseError()))
			state.eventStream.Publish(events.PollErrorEvent{Err: msg.GetResponseError()})
		} else {
			state.eventStream.Publish(events.SnapshotEvent{Devices: msg.Devices})
		}
		// arm the next tick
		if state.polling {
			state.cancelNext = state.scheduler.SendOnce(state.interval, ctx.Self(), pollTick{})
		}
	default:
		state.logger.Debug("poll@default ignore", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *PollActor) fetch(ctx actor.Context) {
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.hubActor, domain.FetchStatesRequest{}, 20*time.Second), func(err error) any {
		return domain.FetchStatesResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
		}
	})
}

func (state *PollActor) stopPolling() {
	state.polling = false
	if state.cancelNext != nil {
		state.cancelNext()
		state.cancelNext = nil
	}
}

func pollStateName(polling bool) string {
	if polling {
		return "polling"
	}
	return "idle"
}
