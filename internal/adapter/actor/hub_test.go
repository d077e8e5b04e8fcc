package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/port"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGateway struct {
	mu      sync.Mutex
	devices []domain.Device
	calls   []domain.ServiceCall
}

func (g *stubGateway) States(_ context.Context) ([]domain.Device, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.devices, nil
}

func (g *stubGateway) CallService(_ context.Context, call domain.ServiceCall) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
	return nil
}

func TestHubActorFetchAndCall(t *testing.T) {

	assert := assert.New(t)

	as := actor.NewActorSystem()
	rootContext := as.Root
	logger := zap.Must(zap.NewDevelopmentConfig().Build())

	gateway := &stubGateway{devices: []domain.Device{{ID: "light.desk", State: "on"}}}
	pid := rootContext.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewHubActor(func(_, _ string) port.HubGateway {
			return gateway
		}, logger)
	}))

	// unconfigured requests short-circuit
	res, err := rootContext.RequestFuture(pid, domain.FetchStatesRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.ErrorIs(res.(domain.FetchStatesResponse).GetResponseError(), domain.ErrNotConfigured)

	res, err = rootContext.RequestFuture(pid, domain.ConfigureHubRequest{URL: "http://hub.test:8123", Token: "token"}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.False(res.(domain.ConfigureHubResponse).HasResponseError())

	res, err = rootContext.RequestFuture(pid, domain.FetchStatesRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	fetch := res.(domain.FetchStatesResponse)
	require.False(t, fetch.HasResponseError())
	require.Len(t, fetch.Devices, 1)
	assert.Equal("light.desk", fetch.Devices[0].ID)

	res, err = rootContext.RequestFuture(pid, domain.CallServiceRequest{
		Call: domain.ServiceCall{Domain: "homeassistant", Service: "toggle", Data: map[string]any{"entity_id": "light.desk"}},
	}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.False(res.(domain.CallServiceResponse).HasResponseError())

	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	require.Len(t, gateway.calls, 1)
	assert.Equal("toggle", gateway.calls[0].Service)

	rootContext.Stop(pid)
	as.Shutdown()
}
