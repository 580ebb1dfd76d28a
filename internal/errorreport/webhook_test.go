package errorreport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("posts json payload", func(t *testing.T) {
		var got webhookMessage
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		pub, err := NewWebhook(srv.URL)
		require.NoError(t, err)

		err = pub.Publish(ctx, "Invalid file extension: .exe for file malware.exe")

		assert.NoError(t, err)
		assert.Equal(t, "fileintake", got.Source)
		assert.Equal(t, "Invalid file extension: .exe for file malware.exe", got.Message)
		assert.False(t, got.Timestamp.IsZero())
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		pub, err := NewWebhook(srv.URL)
		require.NoError(t, err)

		err = pub.Publish(ctx, "boom")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := NewWebhook("")
		assert.Error(t, err)
	})
}
