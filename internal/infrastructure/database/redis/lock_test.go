package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
)

func testGuard(t *testing.T) *AdmissionGuard {
	t.Helper()
	client, _ := testClient(t)
	return NewAdmissionGuard(client, logging.NewNopLogger(), "docket:")
}

func TestAdmissionGuard_SingleClaim(t *testing.T) {
	guard := testGuard(t)
	ctx := context.Background()

	ok, err := guard.TryAcquire(ctx, "case-1/document_triage", "job-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.TryAcquire(ctx, "case-1/document_triage", "job-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second claim rejected while the first holds")

	// A different key is independent.
	ok, err = guard.TryAcquire(ctx, "case-2/document_triage", "job-3", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdmissionGuard_ReleaseUnblocks(t *testing.T) {
	guard := testGuard(t)
	ctx := context.Background()

	ok, err := guard.TryAcquire(ctx, "case-1/document_triage", "job-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, guard.Release(ctx, "case-1/document_triage", "job-1"))

	ok, err = guard.TryAcquire(ctx, "case-1/document_triage", "job-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdmissionGuard_ReleaseByNonOwnerKeepsClaim(t *testing.T) {
	guard := testGuard(t)
	ctx := context.Background()

	ok, err := guard.TryAcquire(ctx, "case-1/document_triage", "job-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A stale job must not release its successor's claim.
	require.NoError(t, guard.Release(ctx, "case-1/document_triage", "job-0"))

	ok, err = guard.TryAcquire(ctx, "case-1/document_triage", "job-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdmissionGuard_TTLExpiryFreesClaim(t *testing.T) {
	client, mr := testClient(t)
	guard := NewAdmissionGuard(client, logging.NewNopLogger(), "docket:")
	ctx := context.Background()

	ok, err := guard.TryAcquire(ctx, "case-1/document_triage", "job-1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = guard.TryAcquire(ctx, "case-1/document_triage", "job-2", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "a crashed job's claim lapses with its TTL")
}
