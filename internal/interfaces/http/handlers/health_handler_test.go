package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LitiDocket/pkg/errors"
)

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler("1.2.3")

	rec := httptest.NewRecorder()
	handler.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LivenessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealthHandler_ReadinessNoCheckers(t *testing.T) {
	handler := NewHealthHandler("test")

	rec := httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_ReadinessAllHealthy(t *testing.T) {
	handler := NewHealthHandler("test",
		HealthCheckFunc{ComponentName: "postgres", Fn: func(context.Context) error { return nil }},
		HealthCheckFunc{ComponentName: "redis", Fn: func(context.Context) error { return nil }},
	)

	rec := httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Len(t, resp.Components, 2)
	assert.Equal(t, "healthy", resp.Components["postgres"].Status)
}

func TestHealthHandler_ReadinessOneUnhealthy(t *testing.T) {
	handler := NewHealthHandler("test",
		HealthCheckFunc{ComponentName: "postgres", Fn: func(context.Context) error { return nil }},
		HealthCheckFunc{ComponentName: "opensearch", Fn: func(context.Context) error {
			return errors.New(errors.ErrCodeDataSourceUnavailable, "cluster unreachable")
		}},
	)

	rec := httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["opensearch"].Status)
	assert.Contains(t, resp.Components["opensearch"].Error, "cluster unreachable")
	assert.Equal(t, "healthy", resp.Components["postgres"].Status)
}
