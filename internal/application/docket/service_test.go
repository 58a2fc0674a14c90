package docket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishDeadlineEvent(_ context.Context, eventType string, _ dockettypes.Deadline) error {
	p.events = append(p.events, eventType)
	return nil
}

type recordingRouter struct {
	cases []common.CaseID
}

func (r *recordingRouter) RouteCheck(_ context.Context, caseID common.CaseID) error {
	r.cases = append(r.cases, caseID)
	return nil
}

func newTestService(t *testing.T) (DeadlineService, *fakeRepo, *fakeCache, *recordingPublisher, *recordingRouter) {
	t.Helper()
	repo := newFakeRepo()
	cache := newFakeCache()
	pub := &recordingPublisher{}
	router := &recordingRouter{}
	svc := NewDeadlineService(repo, cache, pub, router, nopLogger{}, time.UTC)
	return svc, repo, cache, pub, router
}

func validCreateRequest() *CreateDeadlineRequest {
	return &CreateDeadlineRequest{
		CaseID:         "case-1",
		Title:          "Reply brief due",
		DeadlineType:   "brief",
		Priority:       "high",
		DeadlineDate:   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		AlertIntervals: []int{7, 30, 7, 1},
	}
}

func TestDeadlineService_Create(t *testing.T) {
	svc, repo, _, pub, router := newTestService(t)

	got, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, dockettypes.StatusPending, got.Status)
	assert.Equal(t, []int{1, 7, 30}, got.AlertIntervals, "intervals normalized")
	assert.Len(t, repo.deadlines, 1)
	assert.Equal(t, []string{EventDeadlineCreated}, pub.events)
	assert.Equal(t, []common.CaseID{"case-1"}, router.cases)
}

func TestDeadlineService_Create_Invalid(t *testing.T) {
	svc, _, _, pub, _ := newTestService(t)

	req := validCreateRequest()
	req.Priority = "urgent"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, pub.events, "no event for a rejected create")

	_, err = svc.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestDeadlineService_Update_PartialFields(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	notes := "clerk confirmed extension request filed"
	updated, err := svc.Update(context.Background(), created.ID, &UpdateDeadlineRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, created.Title, updated.Title, "unspecified fields untouched")
}

func TestDeadlineService_Get_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeadlineService_Transitions(t *testing.T) {
	svc, _, _, pub, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, dockettypes.StatusCompleted, completed.Status)

	// A closed deadline refuses further transitions.
	_, err = svc.Miss(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	assert.Equal(t, []string{EventDeadlineCreated, EventDeadlineCompleted}, pub.events)
}

func TestDeadlineService_Extend(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	newDate := created.DeadlineDate.AddDate(0, 0, 14)
	extended, err := svc.Extend(context.Background(), created.ID, newDate)
	require.NoError(t, err)
	assert.Equal(t, dockettypes.StatusExtended, extended.Status)
	assert.Equal(t, newDate, extended.DeadlineDate)
}

func TestDeadlineService_MutationInvalidatesMonthCache(t *testing.T) {
	svc, _, cache, _, _ := newTestService(t)

	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	// The deadline's month plus its neighbors: boundary dates render in the
	// adjacent grids' leading and trailing cells.
	assert.Contains(t, cache.deletes, monthCacheKey(2026, time.September))
	assert.Contains(t, cache.deletes, monthCacheKey(2026, time.August))
	assert.Contains(t, cache.deletes, monthCacheKey(2026, time.October))

	deletesBefore := len(cache.deletes)
	_, err = svc.Complete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Greater(t, len(cache.deletes), deletesBefore)
}

func TestDeadlineService_DateMoveInvalidatesOldMonth(t *testing.T) {
	svc, _, cache, _, _ := newTestService(t)

	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	cache.deletes = nil
	moved := time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err = svc.Update(context.Background(), created.ID, &UpdateDeadlineRequest{DeadlineDate: &moved})
	require.NoError(t, err)

	assert.Contains(t, cache.deletes, monthCacheKey(2026, time.September), "grid the deadline left")
	assert.Contains(t, cache.deletes, monthCacheKey(2027, time.January), "grid the deadline joined")
	assert.Contains(t, cache.deletes, monthCacheKey(2026, time.December), "year boundary neighbor")
}

func TestDeadlineService_ExtendAcrossMonthInvalidatesBothGrids(t *testing.T) {
	svc, _, cache, _, _ := newTestService(t)

	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	cache.deletes = nil
	_, err = svc.Extend(context.Background(), created.ID, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, cache.deletes, monthCacheKey(2026, time.September))
	assert.Contains(t, cache.deletes, monthCacheKey(2026, time.November))
}

func TestDeadlineService_Delete(t *testing.T) {
	svc, repo, _, pub, router := newTestService(t)
	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	routesBefore := len(router.cases)
	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, repo.deadlines)
	assert.Equal(t, EventDeadlineDeleted, pub.events[len(pub.events)-1])
	assert.Len(t, router.cases, routesBefore, "deletes do not trigger conflict checks")
}

func TestDeadlineService_List_RejectsBadFilter(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, _, err := svc.List(context.Background(), &ListDeadlinesRequest{
		Filter: domaindocket.Filter{Type: "deposition"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFilterValueInvalid))
}

func TestDeadlineService_List_SortsByRequestedKey(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	first := validCreateRequest()
	first.Title = "b-later"
	first.DeadlineDate = time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	second := validCreateRequest()
	second.Title = "a-sooner"
	second.DeadlineDate = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), first)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), second)
	require.NoError(t, err)

	got, total, err := svc.List(context.Background(), &ListDeadlinesRequest{
		SortKey: SortByDate, SortOrder: OrderAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, got, 2)
	assert.Equal(t, "a-sooner", got[0].Title)
}
