package mapsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LitiDocket/internal/application/mapping"
	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

func newTestMapClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(config.MappingConfig{BaseURL: serverURL}, logging.NewNopLogger())
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.MappingConfig{}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCalculateCompactness(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/compactness", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req mapping.CompactnessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.JSONEq(t, `{"type": "Polygon", "coordinates": []}`, string(req.Geometry))

		w.Write([]byte(`{"polsby_popper": 0.42, "reock": 0.31, "convex_hull_ratio": 0.77}`))
	}))
	defer server.Close()

	client := newTestMapClient(t, server.URL)

	result, err := client.CalculateCompactness(context.Background(), &mapping.CompactnessRequest{
		Geometry: json.RawMessage(`{"type": "Polygon", "coordinates": []}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.42, result.PolsbyPopper)
	assert.Equal(t, 0.77, result.ConvexHullRatio)
}

func TestAlignSpatial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/align", r.URL.Path)
		w.Write([]byte(`{
			"crosswalk": [{"source_id": "tract-1", "target_id": "dist-9", "cell_id": "8a2a100", "weight": 0.63}],
			"quality_metrics": {"coverage": 0.98}
		}`))
	}))
	defer server.Close()

	client := newTestMapClient(t, server.URL)

	result, err := client.AlignSpatial(context.Background(), &mapping.AlignmentRequest{
		Source:     json.RawMessage(`{}`),
		Target:     json.RawMessage(`{}`),
		Resolution: 8,
	})
	require.NoError(t, err)
	require.Len(t, result.Crosswalk, 1)
	assert.Equal(t, "dist-9", result.Crosswalk[0].TargetID)
	assert.Equal(t, 0.98, result.QualityMetrics["coverage"])
}

func TestPost_RejectedRequestSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "geometry is not a closed ring"}`))
	}))
	defer server.Close()

	client := newTestMapClient(t, server.URL)

	_, err := client.CalculateCompactness(context.Background(), &mapping.CompactnessRequest{
		Geometry: json.RawMessage(`{}`),
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "closed ring")
}

func TestPost_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestMapClient(t, server.URL)

	_, err := client.AlignSpatial(context.Background(), &mapping.AlignmentRequest{Resolution: 8})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMappingUnavailable))
}

func TestPost_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestMapClient(t, server.URL)

	_, err := client.CalculateCompactness(context.Background(), &mapping.CompactnessRequest{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMappingUnavailable))
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestMapClient(t, server.URL)
	assert.NoError(t, client.Health(context.Background()))
}
