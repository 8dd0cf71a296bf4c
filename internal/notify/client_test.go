package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peopleregistry/peopleregistry/internal/notify"
)

func TestClient_SendDeletionConfirmed(t *testing.T) {
	var received map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := notify.NewClient(notify.ClientConfig{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		FromAddress: "noreply@peopleregistry.io",
		HTTPClient:  http.DefaultClient,
	})

	err := client.SendDeletionConfirmed(context.Background(), "ada@example.com", "Ada Lovelace")
	require.NoError(t, err)

	assert.Equal(t, "noreply@peopleregistry.io", received["from"])
	assert.Equal(t, "ada@example.com", received["to"])
	assert.Contains(t, received["text"], "Ada Lovelace")
	assert.Contains(t, received["subject"], "deleted")
}

func TestClient_SendDeletionInitiated(t *testing.T) {
	var received map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := notify.NewClient(notify.ClientConfig{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		FromAddress: "noreply@peopleregistry.io",
		HTTPClient:  http.DefaultClient,
	})

	expiry := time.Now().Add(15 * time.Minute)
	err := client.SendDeletionInitiated(context.Background(), "ada@example.com", "Ada Lovelace", expiry)
	require.NoError(t, err)

	assert.Contains(t, received["text"], expiry.Format(time.RFC3339))
}

func TestClient_SendProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := notify.NewClient(notify.ClientConfig{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		FromAddress: "noreply@peopleregistry.io",
		HTTPClient:  http.DefaultClient,
	})

	err := client.SendDeletionConfirmed(context.Background(), "ada@example.com", "Ada Lovelace")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
