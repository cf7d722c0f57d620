package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/kitstock/internal/config"
)

func testConfig(url string) config.WhatsAppConfig {
	return config.WhatsAppConfig{
		AccessToken:   "token-1",
		PhoneNumberID: "12345",
		BaseURL:       url + "/",
		APIVersion:    "v20.0",
	}
}

func TestSendText(t *testing.T) {
	var got textPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	id, err := NewClient(testConfig(srv.URL)).SendText(context.Background(), TextMessage{To: "224600000000", Body: "Low stock"})
	require.NoError(t, err)

	assert.Equal(t, "wamid.1", id)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "224600000000", got.To)
	assert.Equal(t, "Low stock", got.Text.Body)
}

func TestSendTextAPIError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).SendText(context.Background(), TextMessage{To: "1", Body: "x"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 190, apiErr.Code)
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestSendTextRequiresRecipient(t *testing.T) {
	_, err := NewClient(testConfig("http://127.0.0.1:1")).SendText(context.Background(), TextMessage{Body: "x"})
	assert.ErrorIs(t, err, ErrRecipientRequired)
}
