package actor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"studiopanel/internal/adapter/mqtt"
	"studiopanel/internal/config"
	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/events"
	"studiopanel/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const announcerDeviceId = "studiopanel"

// AnnouncerActor mirrors the panel's own status to an MQTT broker:
// availability, device count and a poll problem flag. It only listens
// to the event stream, so the session never knows whether announcing
// is enabled.
type AnnouncerActor struct {
	config      *config.Config
	behavior    actor.Behavior
	stash       *actorutil.Stash
	eventStream *eventstream.EventStream
	client      *mqtt.MQTTClient
	streamSub   *eventstream.Subscription
	logger      *zap.Logger
}

type mqttConnected struct {
}

type mqttConnectionLost struct {
	Error error
}

type publishResult struct {
	Error error
}

func NewAnnouncerActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *AnnouncerActor {
	act := &AnnouncerActor{
		config:      config,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		eventStream: eventStream,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_ANNOUNCER, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *AnnouncerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *AnnouncerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("announcer@starting started")

		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
		}, func(_ pahomqtt.Client, err error) {
			ctx.Send(ctx.Self(), mqttConnectionLost{Error: err})
		})

		state.client.Connect(func(err error) {
			if err != nil {
				ctx.Send(ctx.Self(), mqttConnectionLost{Error: err})
			} else {
				ctx.Send(ctx.Self(), mqttConnected{})
			}
		}, 10*time.Second)

	case mqttConnected:
		state.logger.Debug("announcer@starting connected")

		state.client.Publish(state.client.PanelStateTopic(), mqtt.MQTT_PAYLOAD_ONLINE, 0, true, func(error) {}, 500*time.Millisecond)
		if err := state.publishDiscovery(); err != nil {
			state.logger.Error("announcer@starting discovery publish failed", zap.Error(err))
		}

		state.streamSub = state.eventStream.Subscribe(func(value any) {
			ctx.Send(ctx.Self(), streamEvent{event: value})
		})
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case mqttConnectionLost:
		// stop and let the supervisor decide
		state.logger.Error("announcer@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("announcer@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *AnnouncerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ANNOUNCER,
			Healthy: true,
			State:   "idle",
		})
	case streamEvent:
		state.handleStreamEvent(ctx, msg.event)
	case mqttConnectionLost:
		state.logger.Error("announcer@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("announcer@default ignore", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *AnnouncerActor) handleStreamEvent(ctx actor.Context, event any) {
	switch ev := event.(type) {
	case events.SnapshotEvent:
		state.publish(ctx, state.client.SensorStateTopic(mqtt.SENSOR_ID_DEVICE_COUNT), strconv.Itoa(len(ev.Devices)), false)
		state.publish(ctx, state.client.BinarySensorStateTopic(mqtt.SENSOR_ID_POLL_PROBLEM), mqtt.MQTT_PAYLOAD_OFF, true)
	case events.PollErrorEvent:
		state.publish(ctx, state.client.BinarySensorStateTopic(mqtt.SENSOR_ID_POLL_PROBLEM), mqtt.MQTT_PAYLOAD_ON, true)
	case events.ConnectionEvent:
		payload := mqtt.MQTT_PAYLOAD_OFFLINE
		if ev.Connected {
			payload = mqtt.MQTT_PAYLOAD_ONLINE
		}
		state.publish(ctx, state.client.PanelStateTopic(), payload, true)
	}
}

func (state *AnnouncerActor) publish(ctx actor.Context, topic, payload string, retain bool) {
	state.logger.Sugar().Debugf("announcer@publish %s => %s", topic, payload)
	state.client.Publish(topic, payload, 1, retain, func(err error) {
		ctx.Send(ctx.Self(), publishResult{Error: err})
	}, 5*time.Second)
	state.behavior.BecomeStacked(state.PublishResultReceive)
}

func (state *AnnouncerActor) PublishResultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case publishResult:
		if msg.Error != nil {
			state.logger.Error("announcer@publishing could not publish a message", zap.Error(msg.Error))
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashOldest(ctx)
	default:
		state.logger.Debug("announcer@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *AnnouncerActor) publishDiscovery() error {
	messages := map[string]mqtt.HADiscoveryConfig{
		mqtt.HADiscoveryBinarySensorTopic(announcerDeviceId, mqtt.SENSOR_ID_PANEL_STATE):  mqtt.PanelStateDiscoveryMessage(state.client, announcerDeviceId),
		mqtt.HADiscoverySensorTopic(announcerDeviceId, mqtt.SENSOR_ID_DEVICE_COUNT):       mqtt.DeviceCountDiscoveryMessage(state.client, announcerDeviceId),
		mqtt.HADiscoveryBinarySensorTopic(announcerDeviceId, mqtt.SENSOR_ID_POLL_PROBLEM): mqtt.PollProblemDiscoveryMessage(state.client, announcerDeviceId),
	}
	for topic, msg := range messages {
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		state.client.Publish(topic, payload, 0, true, func(error) {}, 1*time.Second)
	}
	return nil
}

func (state *AnnouncerActor) stop() {
	state.logger.Debug("announcer: disconnect")
	if state.streamSub != nil {
		state.eventStream.Unsubscribe(state.streamSub)
		state.streamSub = nil
	}
	if state.client != nil {
		state.client.Publish(state.client.PanelStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, 0, true, func(error) {}, 500*time.Millisecond)
		state.client.Disconnect(500 * time.Millisecond)
	}
}
