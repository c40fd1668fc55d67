package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"parilka/internal/config"
	"parilka/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileClient(t *testing.T, handler http.HandlerFunc, maxRetries int) *ProfileClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := zerolog.New(io.Discard)
	return NewProfileClient(config.ProfileConfig{
		BaseURL:    srv.URL,
		Timeout:    2,
		MaxRetries: maxRetries,
	}, &logger)
}

var testProfile = &models.ProfileRequest{
	ID:        "acc-1",
	Email:     "client@example.com",
	FirstName: "Ivan",
	LastName:  "Petrov",
	Phone:     "+79990001122",
}

func TestCreateProfile(t *testing.T) {
	client := newProfileClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/clients", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got models.ProfileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "acc-1", got.ID)
		assert.Equal(t, "Ivan", got.FirstName)

		w.WriteHeader(http.StatusCreated)
	}, 0)

	err := client.CreateProfile(context.Background(), testProfile)
	assert.NoError(t, err)
}

func TestCreateProfileRejected(t *testing.T) {
	var calls atomic.Int32
	client := newProfileClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}, 3)

	err := client.CreateProfile(context.Background(), testProfile)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx rejection is not retried")
}

func TestCreateProfileRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newProfileClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}, 2)

	err := client.CreateProfile(context.Background(), testProfile)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCreateProfileTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	logger := zerolog.New(io.Discard)
	client := NewProfileClient(config.ProfileConfig{
		BaseURL: srv.URL, Timeout: 1, MaxRetries: 0,
	}, &logger)

	err := client.CreateProfile(context.Background(), testProfile)
	assert.Error(t, err)
}

func TestCreateProfileContextCancelled(t *testing.T) {
	client := newProfileClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.CreateProfile(ctx, testProfile)
	assert.Error(t, err, "cancelled context stops the retry loop")
}
