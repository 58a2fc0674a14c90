package conflictsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

func newTestConflictClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(config.ConflictConfig{
		BaseURL:       serverURL,
		Timeout:       time.Second,
		RetryAttempts: 2,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	client.retryDelay = time.Millisecond
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.ConflictConfig{}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCheckConflicts_DecodesMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/cases/case-7/conflicts", r.URL.Path)
		w.Write([]byte(`{
			"matches": [{
				"deadline_ids": ["dl-1", "dl-2"],
				"titles": ["Expert disclosure", "Motion hearing"],
				"dates": ["2026-09-01T00:00:00Z", "2026-09-01T00:00:00Z"],
				"severity": "high",
				"detail": "same-day filings in different venues"
			}]
		}`))
	}))
	defer server.Close()

	client := newTestConflictClient(t, server.URL)

	matches, err := client.CheckConflicts(context.Background(), "case-7")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "dl-1", string(matches[0].DeadlineIDs[0]))
	assert.Equal(t, "Motion hearing", matches[0].Titles[1])
}

func TestCheckConflicts_EmptyIsClear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matches": []}`))
	}))
	defer server.Close()

	client := newTestConflictClient(t, server.URL)

	matches, err := client.CheckConflicts(context.Background(), "case-7")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCheckConflicts_UnknownCase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestConflictClient(t, server.URL)

	_, err := client.CheckConflicts(context.Background(), "ghost")
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaseNotFound))
}

func TestCheckConflicts_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"matches": []}`))
	}))
	defer server.Close()

	client := newTestConflictClient(t, server.URL)

	_, err := client.CheckConflicts(context.Background(), "case-7")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCheckConflicts_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestConflictClient(t, server.URL)

	_, err := client.CheckConflicts(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCheckConflicts_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestConflictClient(t, server.URL)

	_, err := client.CheckConflicts(context.Background(), "case-7")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestConflictClient(t, server.URL)
	assert.NoError(t, client.Health(context.Background()))
}
