// Package integration wires the application services together over in-memory
// infrastructure and runs them end to end: deadline mutations feeding the
// calendar, the conflict router, and the triage admission/scoring pipeline.
// No containers are involved; the repository adapters have their own
// container-backed tests.
package integration

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/turtacn/LitiDocket/internal/application/conflictcheck"
	appdocket "github.com/turtacn/LitiDocket/internal/application/docket"
	"github.com/turtacn/LitiDocket/internal/application/triage"
	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}

// ---------------------------------------------------------------------------
// In-memory deadline repository
// ---------------------------------------------------------------------------

type memDeadlineRepo struct {
	mu        sync.Mutex
	deadlines map[dockettypes.DeadlineID]*domaindocket.Deadline
	order     []dockettypes.DeadlineID
}

func newMemDeadlineRepo() *memDeadlineRepo {
	return &memDeadlineRepo{deadlines: map[dockettypes.DeadlineID]*domaindocket.Deadline{}}
}

func (r *memDeadlineRepo) snapshot() []*domaindocket.Deadline {
	out := make([]*domaindocket.Deadline, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.deadlines[id])
	}
	return out
}

func (r *memDeadlineRepo) Create(_ context.Context, d *domaindocket.Deadline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadlines[d.ID] = d
	r.order = append(r.order, d.ID)
	return nil
}

func (r *memDeadlineRepo) Update(_ context.Context, d *domaindocket.Deadline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadlines[d.ID] = d
	return nil
}

func (r *memDeadlineRepo) Delete(_ context.Context, id dockettypes.DeadlineID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deadlines, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memDeadlineRepo) GetByID(_ context.Context, id dockettypes.DeadlineID) (*domaindocket.Deadline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deadlines[id], nil
}

func (r *memDeadlineRepo) List(_ context.Context, filter domaindocket.Filter, _ ...domaindocket.QueryOption) ([]*domaindocket.Deadline, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := appdocket.ApplyFilterSort(r.snapshot(), filter, "", "")
	return matched, int64(len(matched)), nil
}

func (r *memDeadlineRepo) ListByCase(_ context.Context, caseID common.CaseID) ([]*domaindocket.Deadline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domaindocket.Deadline
	for _, d := range r.snapshot() {
		if d.CaseID == caseID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDeadlineRepo) ListInRange(_ context.Context, from, to time.Time) ([]*domaindocket.Deadline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domaindocket.Deadline
	for _, d := range r.snapshot() {
		if !d.DeadlineDate.Before(from) && d.DeadlineDate.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDeadlineRepo) ListOpenDueWithin(_ context.Context, now time.Time, days int) ([]*domaindocket.Deadline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domaindocket.Deadline
	for _, d := range r.snapshot() {
		if d.IsOpen() && !d.DeadlineDate.Before(now.AddDate(0, 0, -1)) &&
			!d.DeadlineDate.After(now.AddDate(0, 0, days+1)) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDeadlineRepo) CountByStatus(_ context.Context) (map[dockettypes.DeadlineStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[dockettypes.DeadlineStatus]int64{}
	for _, d := range r.deadlines {
		counts[d.Status]++
	}
	return counts, nil
}

func (r *memDeadlineRepo) WithTx(ctx context.Context, fn func(domaindocket.DeadlineRepository) error) error {
	return fn(r)
}

// ---------------------------------------------------------------------------
// In-memory job repository
// ---------------------------------------------------------------------------

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[dockettypes.JobID]*domaindocket.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[dockettypes.JobID]*domaindocket.Job{}}
}

func (r *memJobRepo) Create(_ context.Context, j *domaindocket.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
	return nil
}

func (r *memJobRepo) Update(_ context.Context, j *domaindocket.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
	return nil
}

func (r *memJobRepo) Delete(_ context.Context, id dockettypes.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

func (r *memJobRepo) GetByID(_ context.Context, id dockettypes.JobID) (*domaindocket.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id], nil
}

func (r *memJobRepo) FindActive(_ context.Context, caseID common.CaseID, jobType dockettypes.JobType) (*domaindocket.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.CaseID == caseID && j.Type == jobType && !j.IsTerminal() {
			return j, nil
		}
	}
	return nil, nil
}

func (r *memJobRepo) ListByCase(_ context.Context, caseID common.CaseID, limit int) ([]*domaindocket.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domaindocket.Job
	for _, j := range r.jobs {
		if j.CaseID == caseID {
			out = append(out, j)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// In-memory admission guard, cache, broker, store, scorer, checker
// ---------------------------------------------------------------------------

type memGuard struct {
	mu     sync.Mutex
	claims map[string]string
}

func newMemGuard() *memGuard { return &memGuard{claims: map[string]string{}} }

func (g *memGuard) TryAcquire(_ context.Context, key, owner string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.claims[key]; held {
		return false, nil
	}
	g.claims[key] = owner
	return true, nil
}

func (g *memGuard) Release(_ context.Context, key, owner string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claims[key] == owner {
		delete(g.claims, key)
	}
	return nil
}

// memCache round-trips values through JSON like the Redis adapter does.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

// memBroker stands in for Kafka: submitted jobs queue up for the "worker"
// side of the test to process.
type memBroker struct {
	mu        sync.Mutex
	submitted []dockettypes.Job
	finished  []dockettypes.Job
	progress  []float64
	events    []string
}

func (b *memBroker) PublishJobSubmitted(_ context.Context, job dockettypes.Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitted = append(b.submitted, job)
	return nil
}

func (b *memBroker) PublishJobProgress(_ context.Context, _ dockettypes.JobID, progress float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.progress = append(b.progress, progress)
	return nil
}

func (b *memBroker) PublishJobFinished(_ context.Context, job dockettypes.Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = append(b.finished, job)
	return nil
}

func (b *memBroker) PublishDeadlineEvent(_ context.Context, eventType string, _ dockettypes.Deadline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
	return nil
}

// nextSubmitted pops the oldest unprocessed job submission.
func (b *memBroker) nextSubmitted(t *testing.T) dockettypes.Job {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.submitted) == 0 {
		t.Fatal("no submitted job on the broker")
	}
	job := b.submitted[0]
	b.submitted = b.submitted[1:]
	return job
}

type memDocStore struct {
	docs map[string]string
}

func (s *memDocStore) Fetch(_ context.Context, documentID string) (io.ReadCloser, error) {
	content, ok := s.docs[documentID]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDocumentNotFound, "document %s not found", documentID)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (s *memDocStore) Exists(_ context.Context, documentID string) (bool, error) {
	_, ok := s.docs[documentID]
	return ok, nil
}

// staticScorer returns fixed per-document scores; unknown documents fail.
type staticScorer struct {
	scores    map[string]float64
	privilege map[string]float64
}

func (s *staticScorer) Score(_ context.Context, documentID string, _ io.Reader) (triage.DocumentScores, error) {
	score, ok := s.scores[documentID]
	if !ok {
		return triage.DocumentScores{}, errors.Newf(errors.ErrCodeScoringFailed, "no score for document %s", documentID)
	}
	return triage.DocumentScores{Relevance: score, Privilege: s.privilege[documentID]}, nil
}

// memChecker plays the external conflict collaborator; tests swap its answer
// between mutations.
type memChecker struct {
	mu      sync.Mutex
	matches []dockettypes.ConflictMatch
	err     error
}

func (c *memChecker) set(matches []dockettypes.ConflictMatch, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches = matches
	c.err = err
}

func (c *memChecker) CheckConflicts(_ context.Context, _ common.CaseID) ([]dockettypes.ConflictMatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matches, c.err
}

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

// env is the fully wired in-memory deployment under test.
type env struct {
	Deadlines appdocket.DeadlineService
	Calendar  appdocket.CalendarService
	Triage    triage.Service
	Processor *triage.Processor
	Router    *conflictcheck.Router

	DeadlineRepo *memDeadlineRepo
	JobRepo      *memJobRepo
	Broker       *memBroker
	Checker      *memChecker
	DocStore     *memDocStore
	Scorer       *staticScorer
}

// newEnv wires the services exactly as the binaries do, substituting
// in-memory adapters for postgres, redis, kafka, minio, and the two HTTP
// collaborators.  now pins the calendar clock.
func newEnv(t *testing.T, now time.Time) *env {
	t.Helper()

	deadlineRepo := newMemDeadlineRepo()
	jobRepo := newMemJobRepo()
	broker := &memBroker{}
	checker := &memChecker{}
	cache := newMemCache()

	router := conflictcheck.NewRouter(checker, nopLogger{}, func() time.Time { return now })

	docStore := &memDocStore{docs: map[string]string{}}
	scorer := &staticScorer{scores: map[string]float64{}, privilege: map[string]float64{}}

	deadlines := appdocket.NewDeadlineService(deadlineRepo, cache, broker, router, nopLogger{}, time.UTC)
	calendar := appdocket.NewCalendarService(deadlineRepo, cache, nopLogger{},
		appdocket.CalendarServiceConfig{
			UpcomingWindowDays: 14,
			CacheTTL:           time.Minute,
			Location:           time.UTC,
		}, func() time.Time { return now })
	triageSvc := triage.NewService(jobRepo, newMemGuard(), broker, nopLogger{},
		triage.ServiceConfig{DefaultThreshold: 0.6, DefaultPrivilegeThreshold: 0.7, AdmissionTTL: time.Minute})
	processor := triage.NewProcessor(triageSvc, docStore, scorer, nopLogger{})

	return &env{
		Deadlines: deadlines,
		Calendar:  calendar,
		Triage:    triageSvc,
		Processor: processor,
		Router:    router,

		DeadlineRepo: deadlineRepo,
		JobRepo:      jobRepo,
		Broker:       broker,
		Checker:      checker,
		DocStore:     docStore,
		Scorer:       scorer,
	}
}
