package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studiopanel/internal/core/domain"
	"studiopanel/internal/core/port"
)

const settingsPath = "/api/studio_panel/settings"

// Client reads and writes the customization document served by the
// hub's studio_panel integration. The document is always transferred
// whole; the store has no partial update support.
type Client struct {
	base  string
	token string
	http  *http.Client
}

func NewClient(baseURL, token, proxyBase string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if proxyBase != "" {
		base = strings.TrimRight(proxyBase, "/")
	}
	return &Client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Load(ctx context.Context) (domain.Settings, error) {
	settings := domain.NewSettings()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+settingsPath, nil)
	if err != nil {
		return settings, &domain.StorageError{Op: "load", Err: err}
	}
	body, err := c.do(req)
	if err != nil {
		return settings, &domain.StorageError{Op: "load", Err: err}
	}
	// an integration with nothing stored yet serves an empty object
	if err := json.Unmarshal(body, &settings); err != nil {
		return settings, &domain.StorageError{Op: "load", Err: err}
	}
	settings.Normalize()
	return settings, nil
}

func (c *Client) Save(ctx context.Context, settings domain.Settings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return &domain.StorageError{Op: "flush", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+settingsPath, bytes.NewReader(encoded))
	if err != nil {
		return &domain.StorageError{Op: "flush", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if _, err := c.do(req); err != nil {
		return &domain.StorageError{Op: "flush", Err: err}
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = "request failed"
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return body, nil
}

// ensure interface compliance
var _ port.SettingsStore = (*Client)(nil)
