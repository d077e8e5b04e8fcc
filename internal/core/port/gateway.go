package port

import (
	"context"

	"studiopanel/internal/core/domain"
)

// HubGateway is the authenticated HTTP/JSON client towards the hub
// device API.
type HubGateway interface {
	States(ctx context.Context) ([]domain.Device, error)
	CallService(ctx context.Context, call domain.ServiceCall) error
}

// SettingsStore reads and writes the customization document. Save
// always writes the whole document; there is no partial update.
type SettingsStore interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}
