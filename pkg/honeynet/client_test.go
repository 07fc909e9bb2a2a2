package honeynet

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ftpot/pkg/config"
)

func TestPostLoginEvent(t *testing.T) {
	var received envelope
	var contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(config.HoneynetConfig{
		ID:    42,
		Token: "secret",
		URL:   srv.URL,
	}, nil)

	event := Event{
		HoneypotID: 42,
		Token:      "secret",
		Timestamp:  eventTimestamp(),
		Type:       EventTypeLogin,
		Content: LoginContent{
			SrcIP:   "203.0.113.7",
			Service: "ftp",
			User:    "root",
			Pass:    "toor",
		},
	}
	require.NoError(t, client.post(event))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, 42, received.Event.HoneypotID)
	assert.Equal(t, "secret", received.Event.Token)
	assert.Equal(t, "login", received.Event.Type)

	content, ok := received.Event.Content.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", content["srcIP"])
	assert.Equal(t, "ftp", content["service"])
	assert.Equal(t, "root", content["user"])
	assert.Equal(t, "toor", content["pass"])
}

func TestPostFileEventWireFormat(t *testing.T) {
	var raw []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		raw = body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(config.HoneynetConfig{ID: 1, Token: "t", URL: srv.URL}, nil)

	event := Event{
		HoneypotID: 1,
		Token:      "t",
		Timestamp:  "2026-08-24 10:00:00",
		Type:       EventTypeFile,
		Content: FileContent{
			SrcIP:   "203.0.113.7",
			Service: "ftp",
			Fname:   "evil.exe",
			SHA1:    "deadbeef | Hash not found on VT.",
			Size:    "1337",
		},
	}
	require.NoError(t, client.post(event))

	// The collector expects a single top-level "event" key and the size
	// rendered as a string.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "event")

	ev := decoded["event"].(map[string]any)
	assert.Equal(t, "file", ev["type"])

	content := ev["content"].(map[string]any)
	assert.Equal(t, "deadbeef | Hash not found on VT.", content["sha1"])
	assert.Equal(t, "1337", content["size"])
}

func TestPostCollectorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(config.HoneynetConfig{ID: 1, Token: "t", URL: srv.URL}, nil)

	err := client.post(Event{Type: EventTypeLogin})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestEmitDisabledWithoutURL(t *testing.T) {
	client := NewClient(config.HoneynetConfig{ID: 1, Token: "t"}, nil)

	assert.False(t, client.Enabled())

	// Must not panic or block
	client.EmitLogin("203.0.113.7", "root", "toor")
	client.EmitFile("203.0.113.7", "evil.exe", "hash", 1)
}
