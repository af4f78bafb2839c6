package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nfrund/confirmflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendSender_Send(t *testing.T) {
	var got resendPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewResendSender("key-123", "")
	s.endpoint = srv.URL

	require.NoError(t, s.Send("bob@example.com", "Your code", "<p>123456</p>"))
	assert.Equal(t, "Bearer key-123", auth)
	assert.Equal(t, "bob@example.com", got.To)
	assert.Equal(t, "Your code", got.Subject)
	assert.Equal(t, "<p>123456</p>", got.HTML)
	assert.NotEmpty(t, got.From)
}

func TestResendSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewResendSender("key", "a@b.c")
	s.endpoint = srv.URL

	err := s.Send("bob@example.com", "s", "b")
	assert.ErrorContains(t, err, "401")
	assert.ErrorContains(t, err, "bad key")
}

func TestNewEmailService(t *testing.T) {
	t.Run("log", func(t *testing.T) {
		s, err := NewEmailService(&config.Config{EmailProvider: "log"})
		require.NoError(t, err)
		assert.IsType(t, &LogSender{}, s)
	})
	t.Run("resend without key", func(t *testing.T) {
		_, err := NewEmailService(&config.Config{EmailProvider: "resend"})
		assert.Error(t, err)
	})
	t.Run("resend", func(t *testing.T) {
		s, err := NewEmailService(&config.Config{EmailProvider: "resend", EmailAPIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &ResendSender{}, s)
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := NewEmailService(&config.Config{EmailProvider: "carrier-pigeon"})
		assert.Error(t, err)
	})
}
