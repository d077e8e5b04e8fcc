package actor

import (
	"context"
	"fmt"
	"time"

	"studiopanel/internal/adapter/hub"
	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/port"
	"studiopanel/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// HubGatewayFactory builds a gateway for a set of credentials. Tests
// substitute a fake here.
type HubGatewayFactory func(url, token string) port.HubGateway

func DefaultHubGatewayFactory(proxyBase string) HubGatewayFactory {
	return func(url, token string) port.HubGateway {
		return hub.NewClient(url, token, proxyBase)
	}
}

// HubActor serializes access to the hub device API. Requests run as
// background tasks so the mailbox stays responsive; while one is in
// flight the actor stacks a waiting state and stashes newcomers.
type HubActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	factory  HubGatewayFactory
	gateway  port.HubGateway
	logger   *zap.Logger
}

func NewHubActor(factory HubGatewayFactory, logger *zap.Logger) *HubActor {
	act := &HubActor{
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		factory:  factory,
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_HUB, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *HubActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HubActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_HUB,
			Healthy: true,
			State:   "idle",
		})
	case domain.ConfigureHubRequest:
		state.logger.Debug("hub@default ConfigureHubRequest")
		if msg.URL == "" || msg.Token == "" {
			state.gateway = nil
			if ctx.Sender() != nil {
				ctx.Respond(domain.ConfigureHubResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
				})
			}
			return
		}
		state.gateway = state.factory(msg.URL, msg.Token)
		if ctx.Sender() != nil {
			ctx.Respond(domain.ConfigureHubResponse{})
		}
	case domain.FetchStatesRequest:
		state.logger.Debug("hub@default FetchStatesRequest")
		if state.gateway == nil {
			ctx.Respond(domain.FetchStatesResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
			})
			return
		}
		sender := ctx.Sender()
		gateway := state.gateway
		actorutil.NewBackgroundTask(ctx, func() (*domain.FetchStatesResponse, error) {
			devices, err := gateway.States(context.Background())
			if err != nil {
				return nil, err
			}
			return &domain.FetchStatesResponse{Devices: devices}, nil
		}).WithTimeout(15 * time.Second).Recover(func(err error) domain.FetchStatesResponse {
			return domain.FetchStatesResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			}
		}).PipeToWrapped(ctx.Self(), sender)
		state.behavior.BecomeStacked(state.WaitingReceive)
	case domain.CallServiceRequest:
		state.logger.Debug("hub@default CallServiceRequest",
			zap.String("domain", msg.Call.Domain), zap.String("service", msg.Call.Service))
		if state.gateway == nil {
			ctx.Respond(domain.CallServiceResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
			})
			return
		}
		sender := ctx.Sender()
		gateway := state.gateway
		call := msg.Call
		actorutil.NewBackgroundTask(ctx, func() (*domain.CallServiceResponse, error) {
			if err := gateway.CallService(context.Background(), call); err != nil {
				return nil, err
			}
			return &domain.CallServiceResponse{}, nil
		}).WithTimeout(15 * time.Second).Recover(func(err error) domain.CallServiceResponse {
			return domain.CallServiceResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			}
		}).PipeToWrapped(ctx.Self(), sender)
		state.behavior.BecomeStacked(state.WaitingReceive)
	default:
		state.logger.Debug("hub@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HubActor) WaitingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case actorutil.TaskResult:
		if msg.ReplyTo != nil {
			ctx.Send(msg.ReplyTo, msg.Message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashOldest(ctx)
	default:
		state.logger.Debug("hub@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}
