// Package conflictcheck routes deadline mutations to the external conflict
// checker and keeps the latest per-case verdict for the presentation layer.
// Conflicts are computed by the collaborator, never here.
package conflictcheck

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// Checker is the external conflict-detection collaborator.
type Checker interface {
	CheckConflicts(ctx context.Context, caseID common.CaseID) ([]dockettypes.ConflictMatch, error)
}

// Logger abstracts structured logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Router invokes the checker after each successful deadline mutation and
// retains the most recent report per case.
//
// Sequencing: the deadline service calls RouteCheck only after the mutation
// is durable, so a check never runs against a state that may still roll back.
// There is no retry; a failed check is recorded as unknown and the next
// mutation (or explicit refresh) triggers a fresh one.
type Router struct {
	checker Checker
	logger  Logger
	now     func() time.Time

	mu      sync.RWMutex
	reports map[common.CaseID]dockettypes.ConflictReport
}

// NewRouter wires the conflict-result router.  now may be nil.
func NewRouter(checker Checker, logger Logger, now func() time.Time) *Router {
	if now == nil {
		now = time.Now
	}
	return &Router{
		checker: checker,
		logger:  logger,
		now:     now,
		reports: map[common.CaseID]dockettypes.ConflictReport{},
	}
}

// RouteCheck runs one conflict check for caseID and records the verdict.
// Checker failures are absorbed: the case state becomes unknown and the error
// is logged, because a missed check must never block or fail the mutation
// that triggered it.
func (r *Router) RouteCheck(ctx context.Context, caseID common.CaseID) error {
	if caseID == "" {
		return nil
	}

	matches, err := r.checker.CheckConflicts(ctx, caseID)
	report := dockettypes.ConflictReport{
		CaseID:    caseID,
		CheckedAt: r.now().UTC(),
	}
	switch {
	case err != nil:
		report.Status = dockettypes.ConflictUnknown
		r.logger.Warn("conflict check failed, verdict unknown",
			"case_id", caseID, "error", err)
	case len(matches) == 0:
		report.Status = dockettypes.ConflictClear
	default:
		report.Status = dockettypes.ConflictDetected
		report.Matches = normalizeMatches(matches)
	}

	r.mu.Lock()
	r.reports[caseID] = report
	r.mu.Unlock()

	if report.Status == dockettypes.ConflictDetected {
		r.logger.Info("scheduling conflicts detected",
			"case_id", caseID, "matches", len(report.Matches))
	}
	return nil
}

// StateFor returns the latest report for caseID.  A case that was never
// checked reports unchecked, not clear.
func (r *Router) StateFor(caseID common.CaseID) dockettypes.ConflictReport {
	r.mu.RLock()
	report, ok := r.reports[caseID]
	r.mu.RUnlock()
	if !ok {
		return dockettypes.ConflictReport{
			CaseID: caseID,
			Status: dockettypes.ConflictUnchecked,
		}
	}
	return report
}

// Refresh re-runs the check on demand, for the handler's retry affordance.
func (r *Router) Refresh(ctx context.Context, caseID common.CaseID) (dockettypes.ConflictReport, error) {
	if err := r.RouteCheck(ctx, caseID); err != nil {
		return dockettypes.ConflictReport{}, err
	}
	return r.StateFor(caseID), nil
}

// Forget drops the retained report, typically when its case is removed.
func (r *Router) Forget(caseID common.CaseID) {
	r.mu.Lock()
	delete(r.reports, caseID)
	r.mu.Unlock()
}

// normalizeMatches orders each pair lexicographically and drops duplicates so
// the result is an unordered set keyed by the deadline-ID pair.
func normalizeMatches(matches []dockettypes.ConflictMatch) []dockettypes.ConflictMatch {
	out := make([]dockettypes.ConflictMatch, 0, len(matches))
	seen := map[string]bool{}
	for _, m := range matches {
		if m.DeadlineIDs[1] < m.DeadlineIDs[0] {
			m.DeadlineIDs[0], m.DeadlineIDs[1] = m.DeadlineIDs[1], m.DeadlineIDs[0]
			m.Titles[0], m.Titles[1] = m.Titles[1], m.Titles[0]
			m.Dates[0], m.Dates[1] = m.Dates[1], m.Dates[0]
		}
		key := string(m.DeadlineIDs[0]) + "|" + string(m.DeadlineIDs[1])
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeadlineIDs[0] != out[j].DeadlineIDs[0] {
			return out[i].DeadlineIDs[0] < out[j].DeadlineIDs[0]
		}
		return out[i].DeadlineIDs[1] < out[j].DeadlineIDs[1]
	})
	return out
}
