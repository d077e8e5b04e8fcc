package actor

import (
	"sync/atomic"
	"testing"
	"time"

	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/events"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
)

// scriptedHubActor stands in for the hub adapter. Every third fetch
// fails so the test can watch the loop survive errors.
type scriptedHubActor struct {
	calls atomic.Int32
}

func (state *scriptedHubActor) Receive(ctx actor.Context) {
	switch ctx.Message().(type) {
	case domain.FetchStatesRequest:
		n := state.calls.Add(1)
		if n%3 == 0 {
			ctx.Respond(domain.FetchStatesResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: &domain.TransportError{StatusCode: 503, Message: "unavailable"}},
			})
			return
		}
		ctx.Respond(domain.FetchStatesResponse{
			Devices: []domain.Device{{ID: "light.desk", State: "on"}},
		})
	}
}

func TestPollActorLoopSurvivesErrors(t *testing.T) {
	assert := assert.New(t)

	as := actor.NewActorSystem()
	rootContext := as.Root
	logger := newTestLogger()
	es := &eventstream.EventStream{}

	published := make(chan any, 64)
	sub := es.Subscribe(func(value any) {
		published <- value
	})
	defer es.Unsubscribe(sub)

	hub := &scriptedHubActor{}
	hubPID := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return hub
	}))

	pid := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewPollActor(hubPID, es, 100*time.Millisecond, logger)
	}))

	rootContext.Send(pid, domain.StartPollRequest{})

	var snapshots, errors int
	deadline := time.After(5 * time.Second)
	for snapshots < 3 || errors < 1 {
		select {
		case ev := <-published:
			switch ev.(type) {
			case events.SnapshotEvent:
				snapshots++
			case events.PollErrorEvent:
				errors++
			}
		case <-deadline:
			t.Fatalf("timed out: snapshots=%d errors=%d", snapshots, errors)
		}
	}

	// the loop keeps fetching after an error
	assert.GreaterOrEqual(snapshots, 3)
	assert.GreaterOrEqual(errors, 1)

	rootContext.Stop(pid)
	as.Shutdown()
}

func TestPollActorStopCancelsLoop(t *testing.T) {
	assert := assert.New(t)

	as := actor.NewActorSystem()
	rootContext := as.Root
	logger := newTestLogger()
	es := &eventstream.EventStream{}

	hub := &scriptedHubActor{}
	hubPID := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return hub
	}))

	pid := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewPollActor(hubPID, es, 100*time.Millisecond, logger)
	}))

	rootContext.Send(pid, domain.StartPollRequest{})
	time.Sleep(350 * time.Millisecond)
	rootContext.Send(pid, domain.StopPollRequest{})
	time.Sleep(200 * time.Millisecond)

	fetched := hub.calls.Load()
	time.Sleep(500 * time.Millisecond)
	assert.Equal(fetched, hub.calls.Load(), "no fetches after stop")

	rootContext.Stop(pid)
	as.Shutdown()
}
