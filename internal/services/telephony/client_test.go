package telephony

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/callwork/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.TelephonyConfig{BaseURL: serverURL, APIKey: "test-key"})
}

func TestClientDial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/calls", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req DialRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "+15550001122", req.Phone)

		json.NewEncoder(w).Encode(CallState{CallID: "vendor-123", Status: "ringing"})
	}))
	defer server.Close()

	state, err := newTestClient(server.URL).Dial(context.Background(), "+15550001122", "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "vendor-123", state.CallID)
	assert.Equal(t, "ringing", state.Status)
}

func TestClientHangup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/calls/vendor-123/hangup", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := newTestClient(server.URL).Hangup(context.Background(), "vendor-123")
	assert.NoError(t, err)
}

func TestClientVendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "call not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Status(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
