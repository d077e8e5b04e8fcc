package actor

import (
	"fmt"
	"strconv"
	"time"

	adactor "studiopanel/internal/adapter/actor"
	"studiopanel/internal/config"
	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/events"
	"studiopanel/internal/core/service"
	"studiopanel/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

const applyKeyPrefix = "apply/"

// SessionActor owns the panel session state: connection fields, the
// display snapshot, the per-device control edit buffers, the
// customization mirror and the settings lock. All API commands route
// through here, so every read and write of session state happens on a
// single mailbox and no locking is needed.
//
// Ownership is deliberately split: polling writes only the display
// snapshot, user edits write only the control buffers, and the persist
// child owns the flush lifecycle.
type SessionActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash

	cfg          config.Config
	eventStream  *eventstream.EventStream
	hubFactory   adactor.HubGatewayFactory
	storeFactory adactor.SettingsStoreFactory

	hubActor     *actor.PID
	storeActor   *actor.PID
	pollActor    *actor.PID
	persistActor *actor.PID

	hubURL    string
	token     string
	connected bool
	loaded    bool

	devices      []domain.Device
	lights       map[string]*domain.LightControl
	climates     map[string]*domain.ClimateControl
	pendingApply map[string]domain.ServiceCall
	debouncer    *actorutil.Debouncer

	settings   domain.Settings
	lock       *service.Lock
	pollErr    error
	storageErr error

	streamSub *eventstream.Subscription

	connectReplyTo *actor.PID
	refreshReplyTo *actor.PID

	logger *zap.Logger
}

type streamEvent struct {
	event any
}

type applyTick struct {
	EntityID string
}

func NewSessionActor(cfg config.Config, hubFactory adactor.HubGatewayFactory, storeFactory adactor.SettingsStoreFactory, eventStream *eventstream.EventStream, logger *zap.Logger) *SessionActor {
	act := &SessionActor{
		behavior:     actor.NewBehavior(),
		stash:        &actorutil.Stash{},
		cfg:          cfg,
		eventStream:  eventStream,
		hubFactory:   hubFactory,
		storeFactory: storeFactory,
		lights:       map[string]*domain.LightControl{},
		climates:     map[string]*domain.ClimateControl{},
		pendingApply: map[string]domain.ServiceCall{},
		settings:     domain.NewSettings(),
		lock:         service.NewLock(""),
		logger:       actorutil.ActorLogger(domain.ACTOR_ID_SESSION, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *SessionActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *SessionActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("session@default started")
		state.debouncer = actorutil.NewDebouncer(ctx)
		state.spawnChildren(ctx)
		state.streamSub = state.eventStream.Subscribe(func(value any) {
			ctx.Send(ctx.Self(), streamEvent{event: value})
		})
		// connect right away when credentials come from config
		if state.cfg.Hub.URL != "" && state.cfg.Hub.Token != "" {
			ctx.Send(ctx.Self(), domain.ConnectRequest{URL: state.cfg.Hub.URL, Token: state.cfg.Hub.Token})
		}
	case *actor.Stopping:
		state.debouncer.CancelAll()
		if state.streamSub != nil {
			state.eventStream.Unsubscribe(state.streamSub)
			state.streamSub = nil
		}
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SESSION,
			Healthy: true,
			State:   sessionStateName(state.connected),
		})
	case domain.ConnectRequest:
		state.handleConnect(ctx, msg)
	case domain.DisconnectRequest:
		state.handleDisconnect(ctx)
	case domain.RefreshRequest:
		state.handleRefresh(ctx)
	case domain.GetRenderModelRequest:
		ctx.Respond(domain.GetRenderModelResponse{
			Model:    service.Resolve(state.devices, state.settings),
			Lights:   state.lightControls(),
			Climates: state.climateControls(),
			Status:   state.status(),
		})
	case domain.ToggleDeviceRequest:
		if !state.connected {
			ctx.Respond(domain.ToggleDeviceResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
			})
			return
		}
		// forwarded with the caller as sender so the hub adapter
		// reports the outcome straight back
		ctx.RequestWithCustomSender(state.hubActor, domain.CallServiceRequest{
			Call: domain.ServiceCall{
				Domain:  "homeassistant",
				Service: "toggle",
				Data:    map[string]any{"entity_id": msg.EntityID},
			},
		}, ctx.Sender())
	case domain.SetLightControlRequest:
		state.handleSetLight(ctx, msg)
	case domain.SetClimateControlRequest:
		state.handleSetClimate(ctx, msg)
	case applyTick:
		state.handleApplyTick(ctx, msg)
	case domain.CallServiceResponse:
		// outcome of a debounced control apply
		if msg.HasResponseError() {
			state.logger.Warn("session@default control apply failed", zap.Error(msg.GetResponseError()))
			state.pollErr = msg.GetResponseError()
		}
	case domain.RenameDeviceRequest:
		state.mutate(ctx, func() {
			if msg.Name == "" {
				delete(state.settings.Names, msg.EntityID)
			} else {
				state.settings.Names[msg.EntityID] = msg.Name
			}
		})
	case domain.HideDeviceRequest:
		state.mutate(ctx, func() {
			hidden := make([]string, 0, len(state.settings.Hidden)+1)
			for _, id := range state.settings.Hidden {
				if id != msg.EntityID {
					hidden = append(hidden, id)
				}
			}
			if msg.Hidden {
				hidden = append(hidden, msg.EntityID)
			}
			state.settings.Hidden = hidden
		})
	case domain.SetCategoryRequest:
		state.mutate(ctx, func() {
			if msg.Category == "" {
				delete(state.settings.Categories, msg.EntityID)
			} else {
				state.settings.Categories[msg.EntityID] = msg.Category
			}
		})
	case domain.SetOrderRequest:
		state.mutate(ctx, func() {
			state.settings.Order = append([]string(nil), msg.Order...)
		})
	case domain.AddCategoryRequest:
		if msg.Name == "" {
			ctx.Respond(domain.UpdateSettingsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: &domain.ValidationError{Reason: "category name must not be empty"}},
			})
			return
		}
		for _, cat := range state.settings.CustomCategories {
			if cat == msg.Name {
				// already present, nothing to write
				ctx.Respond(domain.UpdateSettingsResponse{})
				return
			}
		}
		state.mutate(ctx, func() {
			state.settings.CustomCategories = append(state.settings.CustomCategories, msg.Name)
		})
	case domain.RemoveCategoryRequest:
		state.mutate(ctx, func() {
			kept := make([]string, 0, len(state.settings.CustomCategories))
			for _, cat := range state.settings.CustomCategories {
				if cat != msg.Name {
					kept = append(kept, cat)
				}
			}
			state.settings.CustomCategories = kept
		})
	case domain.SetPasswordRequest:
		if !state.loaded {
			ctx.Respond(domain.LockResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
				State:              state.lock.State().String(),
			})
			return
		}
		if err := state.lock.SetPassword(msg.Password); err != nil {
			ctx.Respond(domain.LockResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				State:              state.lock.State().String(),
			})
			return
		}
		state.settings.PasswordHash = state.lock.Hash()
		state.scheduleFlush(ctx)
		ctx.Respond(domain.LockResponse{State: state.lock.State().String()})
	case domain.UnlockRequest:
		err := state.lock.Attempt(msg.Password)
		ctx.Respond(domain.LockResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			State:              state.lock.State().String(),
		})
	case domain.LockRequest:
		state.lock.Relock()
		ctx.Respond(domain.LockResponse{State: state.lock.State().String()})
	case streamEvent:
		state.handleStreamEvent(ctx, msg.event)
	default:
		state.logger.Debug("session@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// ConnectingReceive waits for the settings load triggered by a
// connect. Everything else is stashed so no edit can sneak in before
// the stored overlay is reconciled.
func (state *SessionActor) ConnectingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.LoadSettingsResponse:
		if msg.HasResponseError() {
			state.logger.Error("session@connecting settings load failed", zap.Error(msg.GetResponseError()))
			state.storageErr = msg.GetResponseError()
			state.replyConnect(ctx, msg.GetResponseError())
		} else {
			settings := msg.Settings
			settings.Normalize()
			settings.HubURL = state.hubURL
			settings.Token = state.token
			state.settings = settings
			state.lock = service.NewLock(settings.PasswordHash)
			state.loaded = true
			state.storageErr = nil
			ctx.Send(state.persistActor, domain.AllowFlushRequest{})
			state.replyConnect(ctx, nil)
		}
		// polling starts either way: a failed settings load must not
		// leave the display dead
		ctx.Send(state.pollActor, domain.StartPollRequest{})
		state.eventStream.Publish(events.ConnectionEvent{Connected: true})
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("session@connecting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// RefreshingReceive waits for a manual, user triggered fetch. Unlike
// the silent poll, its failure goes straight back to the caller.
func (state *SessionActor) RefreshingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.FetchStatesResponse:
		if msg.HasResponseError() {
			state.replyRefresh(ctx, domain.RefreshResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: msg.GetResponseError()},
			})
		} else {
			state.applySnapshot(ctx, msg.Devices)
			state.replyRefresh(ctx, domain.RefreshResponse{DeviceCount: len(msg.Devices)})
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("session@refreshing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SessionActor) handleConnect(ctx actor.Context, msg domain.ConnectRequest) {
	if msg.URL == "" || msg.Token == "" {
		ctx.Respond(domain.ConnectResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
		})
		return
	}
	state.logger.Info("session@default connecting", zap.String("hub", msg.URL))
	state.hubURL = msg.URL
	state.token = msg.Token
	state.connected = true
	state.loaded = false
	ctx.Send(state.hubActor, domain.ConfigureHubRequest{URL: msg.URL, Token: msg.Token})
	ctx.Send(state.storeActor, domain.ConfigureStoreRequest{URL: msg.URL, Token: msg.Token})
	state.connectReplyTo = ctx.Sender()
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.storeActor, domain.LoadSettingsRequest{}, 30*time.Second), func(err error) any {
		return domain.LoadSettingsResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
		}
	})
	state.behavior.BecomeStacked(state.ConnectingReceive)
}

func (state *SessionActor) handleDisconnect(ctx actor.Context) {
	state.logger.Info("session@default disconnecting")
	state.connected = false
	ctx.Send(state.pollActor, domain.StopPollRequest{})
	state.debouncer.CancelAll()
	state.pendingApply = map[string]domain.ServiceCall{}
	state.eventStream.Publish(events.ConnectionEvent{Connected: false})
	ctx.Respond(domain.DisconnectResponse{})
}

func (state *SessionActor) handleRefresh(ctx actor.Context) {
	if !state.connected {
		ctx.Respond(domain.RefreshResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
		})
		return
	}
	state.refreshReplyTo = ctx.Sender()
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.hubActor, domain.FetchStatesRequest{}, 20*time.Second), func(err error) any {
		return domain.FetchStatesResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
		}
	})
	state.behavior.BecomeStacked(state.RefreshingReceive)
}

func (state *SessionActor) handleSetLight(ctx actor.Context, msg domain.SetLightControlRequest) {
	dev, ok := state.device(msg.EntityID)
	if !ok {
		ctx.Respond(domain.SetLightControlResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: &domain.ValidationError{Reason: "unknown device " + msg.EntityID}},
		})
		return
	}
	ctrl := service.EnsureLightControl(dev, state.lights[msg.EntityID])
	state.lights[msg.EntityID] = ctrl

	data := map[string]any{"entity_id": msg.EntityID}
	switch {
	case msg.Brightness != nil:
		ctrl.Brightness = clampBrightness(*msg.Brightness)
		data["brightness"] = ctrl.Brightness
	case msg.Color != nil:
		rgb, ok := hexToRGB(*msg.Color)
		if !ok {
			ctx.Respond(domain.SetLightControlResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: &domain.ValidationError{Reason: "invalid color " + *msg.Color}},
			})
			return
		}
		ctrl.Color = *msg.Color
		data["rgb_color"] = rgb
	case msg.ColorTemp != nil:
		ctrl.ColorTemp = *msg.ColorTemp
		data["color_temp"] = ctrl.ColorTemp
	default:
		ctx.Respond(domain.SetLightControlResponse{Control: *ctrl})
		return
	}

	state.scheduleApply(ctx, msg.EntityID, domain.ServiceCall{
		Domain:  "light",
		Service: "turn_on",
		Data:    data,
	})
	ctx.Respond(domain.SetLightControlResponse{Control: *ctrl})
}

func (state *SessionActor) handleSetClimate(ctx actor.Context, msg domain.SetClimateControlRequest) {
	dev, ok := state.device(msg.EntityID)
	if !ok {
		ctx.Respond(domain.SetClimateControlResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: &domain.ValidationError{Reason: "unknown device " + msg.EntityID}},
		})
		return
	}
	ctrl := service.EnsureClimateControl(dev, state.climates[msg.EntityID])
	state.climates[msg.EntityID] = ctrl

	var call domain.ServiceCall
	switch {
	case msg.Mode != nil:
		ctrl.Mode = *msg.Mode
		call = domain.ServiceCall{
			Domain:  "climate",
			Service: "set_hvac_mode",
			Data:    map[string]any{"entity_id": msg.EntityID, "hvac_mode": ctrl.Mode},
		}
	case msg.TargetTemp != nil:
		ctrl.TargetTemp = *msg.TargetTemp
		call = domain.ServiceCall{
			Domain:  "climate",
			Service: "set_temperature",
			Data:    map[string]any{"entity_id": msg.EntityID, "temperature": ctrl.TargetTemp},
		}
	default:
		ctx.Respond(domain.SetClimateControlResponse{Control: *ctrl})
		return
	}

	state.scheduleApply(ctx, msg.EntityID, call)
	ctx.Respond(domain.SetClimateControlResponse{Control: *ctrl})
}

// scheduleApply arms the per-device apply debounce. Each device has
// its own timer, so adjusting two sliders concurrently cancels
// neither; within one device only the most recent call survives.
func (state *SessionActor) scheduleApply(ctx actor.Context, entityID string, call domain.ServiceCall) {
	if !state.connected {
		return
	}
	state.pendingApply[entityID] = call
	state.debouncer.Schedule(applyKeyPrefix+entityID, state.applyDebounce(), ctx.Self(), applyTick{EntityID: entityID})
}

func (state *SessionActor) handleApplyTick(ctx actor.Context, msg applyTick) {
	state.debouncer.Settle(applyKeyPrefix + msg.EntityID)
	call, ok := state.pendingApply[msg.EntityID]
	if !ok {
		return
	}
	delete(state.pendingApply, msg.EntityID)
	ctx.RequestWithCustomSender(state.hubActor, domain.CallServiceRequest{Call: call}, ctx.Self())
}

// mutate runs a customization edit under the settings lock and
// schedules the debounced flush. Edits are refused until the stored
// document has been loaded: before that the mirror holds defaults and
// the lock does not yet reflect the stored password hash, so an early
// edit would both bypass the lock and be lost on load.
func (state *SessionActor) mutate(ctx actor.Context, fn func()) {
	if !state.loaded {
		ctx.Respond(domain.UpdateSettingsResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrNotConfigured},
		})
		return
	}
	if !state.lock.CanEdit() {
		ctx.Respond(domain.UpdateSettingsResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrLocked},
		})
		return
	}
	fn()
	state.scheduleFlush(ctx)
	ctx.Respond(domain.UpdateSettingsResponse{})
}

func (state *SessionActor) scheduleFlush(ctx actor.Context) {
	ctx.Send(state.persistActor, domain.PersistSettingsRequest{Settings: state.settings.Clone()})
}

func (state *SessionActor) handleStreamEvent(ctx actor.Context, event any) {
	switch ev := event.(type) {
	case events.SnapshotEvent:
		state.applySnapshot(ctx, ev.Devices)
	case events.PollErrorEvent:
		state.pollErr = ev.Err
	case events.FlushResultEvent:
		state.storageErr = ev.Err
	}
}

// applySnapshot installs a fresh display snapshot. Control edit
// buffers are only seeded for devices seen for the first time, never
// refreshed: remote state flows to the display, not into the user's
// sliders.
func (state *SessionActor) applySnapshot(ctx actor.Context, devices []domain.Device) {
	state.devices = devices
	state.pollErr = nil
	for _, d := range devices {
		switch d.Domain() {
		case "light":
			state.lights[d.ID] = service.EnsureLightControl(d, state.lights[d.ID])
		case "climate":
			state.climates[d.ID] = service.EnsureClimateControl(d, state.climates[d.ID])
		}
	}
	newOrder := service.AppendNew(state.settings.Order, devices)
	if len(newOrder) != len(state.settings.Order) {
		state.settings.Order = newOrder
		if state.loaded {
			state.scheduleFlush(ctx)
		}
	}
}

func (state *SessionActor) spawnChildren(ctx actor.Context) {
	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	hubProps := actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewHubActor(state.hubFactory, state.logger)
	}, actor.WithSupervisor(supervisor))
	hubPID, err := ctx.SpawnNamed(hubProps, domain.ACTOR_ID_HUB)
	if err != nil {
		panic(err)
	}
	state.hubActor = hubPID

	storeProps := actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewStoreActor(state.storeFactory, state.logger)
	}, actor.WithSupervisor(supervisor))
	storePID, err := ctx.SpawnNamed(storeProps, domain.ACTOR_ID_STORE)
	if err != nil {
		panic(err)
	}
	state.storeActor = storePID

	pollProps := actor.PropsFromProducer(func() actor.Actor {
		return NewPollActor(state.hubActor, state.eventStream, state.pollInterval(), state.logger)
	})
	pollPID, err := ctx.SpawnNamed(pollProps, domain.ACTOR_ID_POLL)
	if err != nil {
		panic(err)
	}
	state.pollActor = pollPID

	persistProps := actor.PropsFromProducer(func() actor.Actor {
		return NewPersistActor(state.storeActor, state.eventStream, state.persistDebounce(), state.logger)
	})
	persistPID, err := ctx.SpawnNamed(persistProps, domain.ACTOR_ID_PERSIST)
	if err != nil {
		panic(err)
	}
	state.persistActor = persistPID

	if state.cfg.MQTT.Enable {
		announcerProps := actor.PropsFromProducer(func() actor.Actor {
			return NewAnnouncerActor(&state.cfg, state.eventStream, state.logger)
		}, actor.WithSupervisor(supervisor))
		if _, err := ctx.SpawnNamed(announcerProps, domain.ACTOR_ID_ANNOUNCER); err != nil {
			panic(err)
		}
	}
}

func (state *SessionActor) device(entityID string) (domain.Device, bool) {
	for _, d := range state.devices {
		if d.ID == entityID {
			return d, true
		}
	}
	return domain.Device{}, false
}

func (state *SessionActor) lightControls() map[string]domain.LightControl {
	out := make(map[string]domain.LightControl, len(state.lights))
	for id, ctrl := range state.lights {
		out[id] = *ctrl
	}
	return out
}

func (state *SessionActor) climateControls() map[string]domain.ClimateControl {
	out := make(map[string]domain.ClimateControl, len(state.climates))
	for id, ctrl := range state.climates {
		out[id] = *ctrl
	}
	return out
}

func (state *SessionActor) status() domain.PanelStatus {
	st := domain.PanelStatus{
		Connected: state.connected,
		Loaded:    state.loaded,
		LockState: state.lock.State().String(),
	}
	if state.pollErr != nil {
		st.PollError = state.pollErr.Error()
	}
	if state.storageErr != nil {
		st.StorageError = state.storageErr.Error()
	}
	return st
}

func (state *SessionActor) replyConnect(ctx actor.Context, err error) {
	if state.connectReplyTo != nil {
		ctx.Send(state.connectReplyTo, domain.ConnectResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
		})
		state.connectReplyTo = nil
	}
}

func (state *SessionActor) replyRefresh(ctx actor.Context, resp domain.RefreshResponse) {
	if state.refreshReplyTo != nil {
		ctx.Send(state.refreshReplyTo, resp)
		state.refreshReplyTo = nil
	}
}

func (state *SessionActor) pollInterval() time.Duration {
	return time.Duration(state.cfg.Panel.PollIntervalMillis) * time.Millisecond
}

func (state *SessionActor) persistDebounce() time.Duration {
	return time.Duration(state.cfg.Panel.PersistDebounceMillis) * time.Millisecond
}

func (state *SessionActor) applyDebounce() time.Duration {
	return time.Duration(state.cfg.Panel.ApplyDebounceMillis) * time.Millisecond
}

func clampBrightness(value int) int {
	if value < 1 {
		return 1
	}
	if value > 255 {
		return 255
	}
	return value
}

// hexToRGB parses "#rrggbb" (or "rrggbb") into the triplet the hub's
// light API expects.
func hexToRGB(color string) ([]int, bool) {
	if len(color) > 0 && color[0] == '#' {
		color = color[1:]
	}
	if len(color) != 6 {
		return nil, false
	}
	out := make([]int, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(color[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, false
		}
		out[i] = int(v)
	}
	return out, true
}

func sessionStateName(connected bool) string {
	if connected {
		return "connected"
	}
	return "disconnected"
}
