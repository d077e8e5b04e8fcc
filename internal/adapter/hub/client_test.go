package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"studiopanel/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatesDecodesSnapshot(t *testing.T) {

	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal("/api/states", r.URL.Path)
		require.Equal("Bearer token123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"entity_id":"light.a","state":"on","attributes":{"brightness":120}},
			{"entity_id":"climate.b","state":"heat","attributes":{}}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token123", "")
	devices, err := c.States(context.Background())

	require.NoError(err)
	require.Len(devices, 2)
	require.Equal("light.a", devices[0].ID)
	require.Equal("light", devices[0].Domain())
	require.Equal(float64(120), devices[0].Attributes["brightness"])
}

func TestCallServicePostsPayload(t *testing.T) {

	require := require.New(t)

	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t", "")
	err := c.CallService(context.Background(), domain.ServiceCall{
		Domain:  "light",
		Service: "turn_on",
		Data:    map[string]any{"entity_id": "light.a", "brightness": 200},
	})

	require.NoError(err)
	require.Equal("/api/services/light/turn_on", gotPath)
	require.Contains(gotBody, `"entity_id":"light.a"`)
	require.Contains(gotBody, `"brightness":200`)
}

func TestNon2xxBecomesTransportError(t *testing.T) {

	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid token"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", "")
	_, err := c.States(context.Background())

	var tErr *domain.TransportError
	require.ErrorAs(err, &tErr)
	require.Equal(http.StatusUnauthorized, tErr.StatusCode)
	require.Equal("invalid token", tErr.Message)
}

func TestProxyBaseOverridesHubURL(t *testing.T) {

	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	// absolute hub URL points nowhere; the proxy base must win
	c := NewClient("http://hub.invalid:8123", "t", srv.URL)
	_, err := c.States(context.Background())

	assert.NoError(err)
}
