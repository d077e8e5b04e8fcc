package domain

import (
	"github.com/asynkron/protoactor-go/actor"
)

const (
	ACTOR_ID_SESSION   = "session"
	ACTOR_ID_HUB       = "hub"
	ACTOR_ID_STORE     = "store"
	ACTOR_ID_POLL      = "poll"
	ACTOR_ID_PERSIST   = "persist"
	ACTOR_ID_ANNOUNCER = "announcer"
)

type ActorRef actor.PID

type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}

// Hub adapter messages

type ConfigureHubRequest struct {
	ActorRequestMixIn
	URL   string
	Token string
}

type ConfigureHubResponse struct {
	ActorResponseMixIn
}

type FetchStatesRequest struct {
	ActorRequestMixIn
}

type FetchStatesResponse struct {
	ActorResponseMixIn
	Devices []Device
}

type CallServiceRequest struct {
	ActorRequestMixIn
	Call ServiceCall
}

type CallServiceResponse struct {
	ActorResponseMixIn
}

// Settings store adapter messages

type ConfigureStoreRequest struct {
	ActorRequestMixIn
	URL   string
	Token string
}

type ConfigureStoreResponse struct {
	ActorResponseMixIn
}

type LoadSettingsRequest struct {
	ActorRequestMixIn
}

type LoadSettingsResponse struct {
	ActorResponseMixIn
	Settings Settings
}

type SaveSettingsRequest struct {
	ActorRequestMixIn
	Settings Settings
}

type SaveSettingsResponse struct {
	ActorResponseMixIn
}

// Poll loop control

type StartPollRequest struct {
	ActorRequestMixIn
}

type StopPollRequest struct {
	ActorRequestMixIn
}

// Persistence gate

// PersistSettingsRequest schedules a debounced flush of the document.
type PersistSettingsRequest struct {
	ActorRequestMixIn
	Settings Settings
}

// AllowFlushRequest arms the gate once the initial load has completed.
type AllowFlushRequest struct {
	ActorRequestMixIn
}

// Session API

type ConnectRequest struct {
	ActorRequestMixIn
	URL   string
	Token string
}

type ConnectResponse struct {
	ActorResponseMixIn
}

type DisconnectRequest struct {
	ActorRequestMixIn
}

type DisconnectResponse struct {
	ActorResponseMixIn
}

// RefreshRequest is the manual, user triggered refresh. Unlike the
// silent poll it reports its error to the caller.
type RefreshRequest struct {
	ActorRequestMixIn
}

type RefreshResponse struct {
	ActorResponseMixIn
	DeviceCount int
}

type GetRenderModelRequest struct {
	ActorRequestMixIn
}

type PanelStatus struct {
	Connected    bool   `json:"connected"`
	Loaded       bool   `json:"loaded"`
	LockState    string `json:"lock_state"`
	PollError    string `json:"poll_error,omitempty"`
	StorageError string `json:"storage_error,omitempty"`
}

type GetRenderModelResponse struct {
	ActorResponseMixIn
	Model    RenderModel
	Lights   map[string]LightControl
	Climates map[string]ClimateControl
	Status   PanelStatus
}

type ToggleDeviceRequest struct {
	ActorRequestMixIn
	EntityID string
}

type ToggleDeviceResponse struct {
	ActorResponseMixIn
}

type SetLightControlRequest struct {
	ActorRequestMixIn
	EntityID   string
	Brightness *int
	Color      *string
	ColorTemp  *int
}

type SetLightControlResponse struct {
	ActorResponseMixIn
	Control LightControl
}

type SetClimateControlRequest struct {
	ActorRequestMixIn
	EntityID   string
	TargetTemp *float64
	Mode       *string
}

type SetClimateControlResponse struct {
	ActorResponseMixIn
	Control ClimateControl
}

// Customization mutations. All of them update the in-memory mirror and
// schedule a debounced flush.

type RenameDeviceRequest struct {
	ActorRequestMixIn
	EntityID string
	Name     string
}

type HideDeviceRequest struct {
	ActorRequestMixIn
	EntityID string
	Hidden   bool
}

type SetCategoryRequest struct {
	ActorRequestMixIn
	EntityID string
	Category string
}

type SetOrderRequest struct {
	ActorRequestMixIn
	Order []string
}

type AddCategoryRequest struct {
	ActorRequestMixIn
	Name string
}

type RemoveCategoryRequest struct {
	ActorRequestMixIn
	Name string
}

type UpdateSettingsResponse struct {
	ActorResponseMixIn
}

// Settings lock

type SetPasswordRequest struct {
	ActorRequestMixIn
	Password string
}

type UnlockRequest struct {
	ActorRequestMixIn
	Password string
}

type LockRequest struct {
	ActorRequestMixIn
}

type LockResponse struct {
	ActorResponseMixIn
	State string
}

// Health

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
