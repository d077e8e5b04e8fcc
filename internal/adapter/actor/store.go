package actor

import (
	"context"
	"fmt"
	"time"

	"studiopanel/internal/adapter/store"
	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/port"
	"studiopanel/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type SettingsStoreFactory func(url, token string) port.SettingsStore

func DefaultSettingsStoreFactory(proxyBase string) SettingsStoreFactory {
	return func(url, token string) port.SettingsStore {
		return store.NewClient(url, token, proxyBase)
	}
}

// StoreActor serializes access to the customization store.
type StoreActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	factory  SettingsStoreFactory
	store    port.SettingsStore
	logger   *zap.Logger
}

func NewStoreActor(factory SettingsStoreFactory, logger *zap.Logger) *StoreActor {
	act := &StoreActor{
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		factory:  factory,
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_STORE, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *StoreActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *StoreActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_STORE,
			Healthy: true,
			State:   "idle",
		})
	case domain.ConfigureStoreRequest:
		state.logger.Debug("store@default ConfigureStoreRequest")
		if msg.URL == "" || msg.Token == "" {
			state.store = nil
			if ctx.Sender() != nil {
				ctx.Respond(domain.ConfigureStoreResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
				})
			}
			return
		}
		state.store = state.factory(msg.URL, msg.Token)
		if ctx.Sender() != nil {
			ctx.Respond(domain.ConfigureStoreResponse{})
		}
	case domain.LoadSettingsRequest:
		state.logger.Debug("store@default LoadSettingsRequest")
		if state.store == nil {
			ctx.Respond(domain.LoadSettingsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
			})
			return
		}
		sender := ctx.Sender()
		st := state.store
		actorutil.NewBackgroundTask(ctx, func() (*domain.LoadSettingsResponse, error) {
			settings, err := st.Load(context.Background())
			if err != nil {
				return nil, err
			}
			return &domain.LoadSettingsResponse{Settings: settings}, nil
		}).WithTimeout(15 * time.Second).Recover(func(err error) domain.LoadSettingsResponse {
			return domain.LoadSettingsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			}
		}).PipeToWrapped(ctx.Self(), sender)
		state.behavior.BecomeStacked(state.WaitingReceive)
	case domain.SaveSettingsRequest:
		state.logger.Debug("store@default SaveSettingsRequest")
		if state.store == nil {
			ctx.Respond(domain.SaveSettingsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
			})
			return
		}
		sender := ctx.Sender()
		st := state.store
		settings := msg.Settings
		actorutil.NewBackgroundTask(ctx, func() (*domain.SaveSettingsResponse, error) {
			if err := st.Save(context.Background(), settings); err != nil {
				return nil, err
			}
			return &domain.SaveSettingsResponse{}, nil
		}).WithTimeout(15 * time.Second).Recover(func(err error) domain.SaveSettingsResponse {
			return domain.SaveSettingsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			}
		}).PipeToWrapped(ctx.Self(), sender)
		state.behavior.BecomeStacked(state.WaitingReceive)
	default:
		state.logger.Debug("store@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *StoreActor) WaitingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case actorutil.TaskResult:
		if msg.ReplyTo != nil {
			ctx.Send(msg.ReplyTo, msg.Message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashOldest(ctx)
	default:
		state.logger.Debug("store@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}
