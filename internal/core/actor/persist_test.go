package actor

import (
	"fmt"
	"testing"
	"time"

	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/events"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingStoreActor stands in for the settings store adapter and
// records every flushed document.
type recordingStoreActor struct {
	saves chan domain.Settings
}

func (state *recordingStoreActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.SaveSettingsRequest:
		state.saves <- msg.Settings
		ctx.Respond(domain.SaveSettingsResponse{})
	case domain.LoadSettingsRequest:
		ctx.Respond(domain.LoadSettingsResponse{Settings: domain.NewSettings()})
	}
}

func TestPersistActorGateAndDebounce(t *testing.T) {
	assert := assert.New(t)

	as := actor.NewActorSystem()
	rootContext := as.Root
	logger := newTestLogger()
	es := &eventstream.EventStream{}

	store := &recordingStoreActor{saves: make(chan domain.Settings, 16)}
	storePID := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return store
	}))

	pid := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewPersistActor(storePID, es, 150*time.Millisecond, logger)
	}))

	// before the gate is armed nothing may reach the store
	doc := domain.NewSettings()
	doc.Names["light.desk"] = "Desk"
	rootContext.Send(pid, domain.PersistSettingsRequest{Settings: doc})
	time.Sleep(500 * time.Millisecond)
	assert.Equal(0, len(store.saves), "flush before load must be held back")

	// arming the gate drops the stale queued document; flushing it now
	// would overwrite the freshly loaded one
	rootContext.Send(pid, domain.AllowFlushRequest{})
	time.Sleep(400 * time.Millisecond)
	assert.Equal(0, len(store.saves), "pre-load document must be discarded, not flushed")

	// a burst collapses into a single flush carrying the last document
	for i := 0; i < 5; i++ {
		doc := domain.NewSettings()
		doc.Names["light.desk"] = fmt.Sprintf("Desk %d", i)
		rootContext.Send(pid, domain.PersistSettingsRequest{Settings: doc})
	}
	saved := waitForSave(t, store.saves)
	assert.Equal("Desk 4", saved.Names["light.desk"])

	time.Sleep(400 * time.Millisecond)
	assert.Equal(0, len(store.saves), "burst must produce exactly one flush")

	rootContext.Stop(pid)
	as.Shutdown()
}

func TestPersistActorPublishesFlushResult(t *testing.T) {
	assert := assert.New(t)

	as := actor.NewActorSystem()
	rootContext := as.Root
	logger := newTestLogger()
	es := &eventstream.EventStream{}

	results := make(chan events.FlushResultEvent, 4)
	sub := es.Subscribe(func(value any) {
		if ev, ok := value.(events.FlushResultEvent); ok {
			results <- ev
		}
	})
	defer es.Unsubscribe(sub)

	store := &recordingStoreActor{saves: make(chan domain.Settings, 16)}
	storePID := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return store
	}))

	pid := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewPersistActor(storePID, es, 100*time.Millisecond, logger)
	}))

	rootContext.Send(pid, domain.AllowFlushRequest{})
	rootContext.Send(pid, domain.PersistSettingsRequest{Settings: domain.NewSettings()})

	select {
	case ev := <-results:
		assert.NoError(ev.Err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for flush result event")
	}

	rootContext.Stop(pid)
	as.Shutdown()
}

func waitForSave(t *testing.T, saves chan domain.Settings) domain.Settings {
	t.Helper()
	select {
	case saved := <-saves:
		return saved
	case <-time.After(3 * time.Second):
		require.FailNow(t, "timed out waiting for a settings flush")
		return domain.Settings{}
	}
}

func newTestLogger() *zap.Logger {
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zap.Must(logCfg.Build())
}
