package rateapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
)

func TestFetchLiveRateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		assert.Equal(t, "EUR", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.93}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	rate, err := client.FetchLiveRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.93, rate)
}

func TestFetchLiveRateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchLiveRate(context.Background(), "USD", "EUR")
	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}

func TestFetchLiveRateMissingPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchLiveRate(context.Background(), "USD", "XXX")
	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}

func TestFetchLiveRateRejectsNonPositiveRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchLiveRate(context.Background(), "USD", "EUR")
	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}

func TestFetchLiveRateHonoursContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.FetchLiveRate(ctx, "USD", "EUR")
	assert.ErrorIs(t, err, apperrors.ErrRateUnavailable)
}
