package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdocket "github.com/turtacn/LitiDocket/internal/application/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// fakeDeadlineService records calls and returns canned values.
type fakeDeadlineService struct {
	deadline *dockettypes.Deadline
	list     []dockettypes.Deadline
	total    int64
	err      error

	lastCreate *appdocket.CreateDeadlineRequest
	lastList   *appdocket.ListDeadlinesRequest
	lastID     dockettypes.DeadlineID
	lastDate   time.Time
}

func (f *fakeDeadlineService) Create(_ context.Context, req *appdocket.CreateDeadlineRequest) (*dockettypes.Deadline, error) {
	f.lastCreate = req
	return f.deadline, f.err
}

func (f *fakeDeadlineService) Update(_ context.Context, id dockettypes.DeadlineID, _ *appdocket.UpdateDeadlineRequest) (*dockettypes.Deadline, error) {
	f.lastID = id
	return f.deadline, f.err
}

func (f *fakeDeadlineService) Get(_ context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error) {
	f.lastID = id
	return f.deadline, f.err
}

func (f *fakeDeadlineService) List(_ context.Context, req *appdocket.ListDeadlinesRequest) ([]dockettypes.Deadline, int64, error) {
	f.lastList = req
	return f.list, f.total, f.err
}

func (f *fakeDeadlineService) Delete(_ context.Context, id dockettypes.DeadlineID) error {
	f.lastID = id
	return f.err
}

func (f *fakeDeadlineService) Complete(_ context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error) {
	f.lastID = id
	return f.deadline, f.err
}

func (f *fakeDeadlineService) Miss(_ context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error) {
	f.lastID = id
	return f.deadline, f.err
}

func (f *fakeDeadlineService) Cancel(_ context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error) {
	f.lastID = id
	return f.deadline, f.err
}

func (f *fakeDeadlineService) Extend(_ context.Context, id dockettypes.DeadlineID, newDate time.Time) (*dockettypes.Deadline, error) {
	f.lastID = id
	f.lastDate = newDate
	return f.deadline, f.err
}

func deadlineRouter(svc appdocket.DeadlineService) http.Handler {
	h := NewDeadlineHandler(svc)
	r := chi.NewRouter()
	r.Route("/deadlines", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Route("/{deadlineID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/complete", h.Complete)
			r.Post("/miss", h.Miss)
			r.Post("/cancel", h.Cancel)
			r.Post("/extend", h.Extend)
		})
	})
	return r
}

func sampleWireDeadline() *dockettypes.Deadline {
	return &dockettypes.Deadline{
		ID:           "dl-1",
		CaseID:       "case-1",
		Title:        "Answer due",
		DeadlineType: dockettypes.TypeFiling,
		Priority:     dockettypes.PriorityHigh,
		Status:       dockettypes.StatusPending,
		DeadlineDate: time.Date(2026, 9, 14, 17, 0, 0, 0, time.UTC),
	}
}

func TestDeadlineHandler_Create(t *testing.T) {
	svc := &fakeDeadlineService{deadline: sampleWireDeadline()}
	router := deadlineRouter(svc)

	body := `{"case_id":"case-1","title":"Answer due","deadline_type":"filing",` +
		`"priority":"high","deadline_date":"2026-09-14T17:00:00Z"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deadlines", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.lastCreate)
	assert.Equal(t, "case-1", svc.lastCreate.CaseID)
	assert.Equal(t, "filing", svc.lastCreate.DeadlineType)

	var got dockettypes.Deadline
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, dockettypes.DeadlineID("dl-1"), got.ID)
}

func TestDeadlineHandler_CreateMalformedBody(t *testing.T) {
	router := deadlineRouter(&fakeDeadlineService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deadlines", strings.NewReader("{not json")))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, string(errors.ErrCodeBadRequest), resp.Code)
}

func TestDeadlineHandler_GetNotFound(t *testing.T) {
	svc := &fakeDeadlineService{err: errors.Newf(errors.ErrCodeDeadlineNotFound, "deadline dl-x not found")}
	router := deadlineRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deadlines/dl-x", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, dockettypes.DeadlineID("dl-x"), svc.lastID)
}

func TestDeadlineHandler_ListPassesFilterAndSort(t *testing.T) {
	svc := &fakeDeadlineService{list: []dockettypes.Deadline{*sampleWireDeadline()}, total: 1}
	router := deadlineRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/deadlines?case_id=case-1&priority=high&sort=priority&order=desc&page=2&page_size=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastList)
	assert.Equal(t, "case-1", svc.lastList.Filter.CaseID)
	assert.Equal(t, "high", svc.lastList.Filter.Priority)
	assert.Equal(t, appdocket.SortByPriority, svc.lastList.SortKey)
	assert.Equal(t, appdocket.OrderDesc, svc.lastList.SortOrder)
	assert.Equal(t, 2, svc.lastList.Page)
	assert.Equal(t, 10, svc.lastList.PageSize)

	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.Total)
}

func TestDeadlineHandler_ListDefaultsSortToDateAscending(t *testing.T) {
	svc := &fakeDeadlineService{}
	router := deadlineRouter(svc)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/deadlines", nil))

	require.NotNil(t, svc.lastList)
	assert.Equal(t, appdocket.SortByDate, svc.lastList.SortKey)
	assert.Equal(t, appdocket.OrderAsc, svc.lastList.SortOrder)
}

func TestDeadlineHandler_Delete(t *testing.T) {
	svc := &fakeDeadlineService{}
	router := deadlineRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/deadlines/dl-1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, dockettypes.DeadlineID("dl-1"), svc.lastID)
}

func TestDeadlineHandler_CompleteTerminalConflict(t *testing.T) {
	svc := &fakeDeadlineService{err: errors.New(errors.ErrCodeConflict, "deadline already completed")}
	router := deadlineRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deadlines/dl-1/complete", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeadlineHandler_Extend(t *testing.T) {
	svc := &fakeDeadlineService{deadline: sampleWireDeadline()}
	router := deadlineRouter(svc)

	body := `{"new_date":"2026-10-01T17:00:00Z"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deadlines/dl-1/extend", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 10, 1, 17, 0, 0, 0, time.UTC), svc.lastDate)
}

func TestDeadlineHandler_ExtendRequiresDate(t *testing.T) {
	router := deadlineRouter(&fakeDeadlineService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deadlines/dl-1/extend", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, string(errors.ErrCodeDeadlineInvalidDate), resp.Code)
}

func TestWriteAppError_MasksInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeAppError(rec, errors.Wrap(assertableErr("pq: connection reset"), errors.ErrCodeDatabaseError, "failed to persist deadline"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, resp.Message, "pq:")
}

type assertableErr string

func (e assertableErr) Error() string { return string(e) }
