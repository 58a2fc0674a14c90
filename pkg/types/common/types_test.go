package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Validate_ValidUUID(t *testing.T) {
	id := ID("550e8400-e29b-41d4-a716-446655440000")
	err := id.Validate()
	assert.NoError(t, err)
}

func TestID_Validate_EmptyString(t *testing.T) {
	id := ID("")
	err := id.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestID_Validate_InvalidFormat(t *testing.T) {
	id := ID("not-a-uuid")
	err := id.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ID format")
}

func TestNewID_GeneratesValidUUID(t *testing.T) {
	id := NewID()
	err := id.Validate()
	assert.NoError(t, err)
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}

func TestDateRange_Contains(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	r := DateRange{From: from, To: to}

	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(to))
	assert.True(t, r.Contains(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(from.Add(-time.Second)))
	assert.False(t, r.Contains(to.Add(time.Second)))
}

func TestMetadata_MarshalJSON_NilBecomesEmptyObject(t *testing.T) {
	var m Metadata
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestMetadata_MarshalJSON_PreservesKeys(t *testing.T) {
	m := Metadata{"court": "S.D.N.Y."}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"court":"S.D.N.Y."}`, string(data))
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()
	ev := NewBaseEvent("case-42")
	after := time.Now().UTC()

	assert.Equal(t, "case-42", ev.AggregateID())
	assert.NoError(t, ID(ev.EventID()).Validate())
	assert.False(t, ev.OccurredAt().Before(before))
	assert.False(t, ev.OccurredAt().After(after))
}
