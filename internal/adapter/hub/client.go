package hub

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

// Client talks to the hub device API with a long-lived bearer token.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient builds a hub client. When proxyBase is set, requests go
// through that same-origin path instead of the absolute hub URL, which
// avoids cross-origin restrictions during development.
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

func (c *Client) States(ctx context.Context) ([]domain.Device, error) {
	var devices []domain.Device
	if err := c.get(ctx, "/api/states", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func (c *Client) CallService(ctx context.Context, call domain.ServiceCall) error {
	path := fmt.Sprintf("/api/services/%s/%s", call.Domain, call.Service)
	return c.post(ctx, path, call.Data)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return &domain.TransportError{Message: err.Error()}
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.TransportError{Message: fmt.Sprintf("malformed response: %s", err)}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return &domain.TransportError{Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(encoded))
	if err != nil {
		return &domain.TransportError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = "request failed"
		}
		return nil, &domain.TransportError{StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}

// ensure interface compliance
var _ port.HubGateway = (*Client)(nil)
