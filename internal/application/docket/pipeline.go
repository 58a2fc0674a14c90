package docket

import (
	"sort"
	"strings"
	"time"

	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// SortKey names the field a deadline list is ordered by.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByPriority SortKey = "priority"
	SortByTitle    SortKey = "title"
	SortByStatus   SortKey = "status"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ValidateFilter rejects filter values outside the known vocabularies.  The
// "all" sentinel and the empty string are vacuously valid for every field.
func ValidateFilter(f domaindocket.Filter) error {
	if !filterIsAll(f.Type) && !dockettypes.DeadlineType(f.Type).IsValid() {
		return errors.Newf(errors.ErrCodeFilterValueInvalid, "unknown deadline type filter %q", f.Type)
	}
	if !filterIsAll(f.Priority) && !dockettypes.Priority(f.Priority).IsValid() {
		return errors.Newf(errors.ErrCodeFilterValueInvalid, "unknown priority filter %q", f.Priority)
	}
	if !filterIsAll(f.Status) && !dockettypes.DeadlineStatus(f.Status).IsValid() {
		return errors.Newf(errors.ErrCodeFilterValueInvalid, "unknown status filter %q", f.Status)
	}
	return nil
}

func filterIsAll(v string) bool {
	return v == "" || strings.EqualFold(v, dockettypes.FilterAll)
}

// ApplyFilterSort runs the conjunctive filter predicates over deadlines and
// orders the survivors by (key, order).  The sort is stable: ties keep their
// input order, so repeated applications of identical arguments produce
// identical output.  The input slice is never mutated.
func ApplyFilterSort(
	deadlines []*domaindocket.Deadline,
	filter domaindocket.Filter,
	key SortKey,
	order SortOrder,
) []*domaindocket.Deadline {
	out := make([]*domaindocket.Deadline, 0, len(deadlines))
	for _, d := range deadlines {
		if matchesFilter(d, filter) {
			out = append(out, d)
		}
	}

	less := lessFunc(key)
	if less != nil {
		if order == OrderDesc {
			inner := less
			less = func(a, b *domaindocket.Deadline) bool { return inner(b, a) }
		}
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// matchesFilter evaluates the conjunction of all supplied predicates;
// "all" (or empty) makes a predicate vacuously true.
func matchesFilter(d *domaindocket.Deadline, f domaindocket.Filter) bool {
	if !filterIsAll(f.CaseID) && string(d.CaseID) != f.CaseID {
		return false
	}
	if !filterIsAll(f.Type) && string(d.Type) != f.Type {
		return false
	}
	if !filterIsAll(f.Priority) && string(d.Priority) != f.Priority {
		return false
	}
	if !filterIsAll(f.Status) && string(d.Status) != f.Status {
		return false
	}
	return true
}

// lessFunc returns the ascending comparator for a sort key, or nil for an
// unknown key (input order preserved).
func lessFunc(key SortKey) func(a, b *domaindocket.Deadline) bool {
	switch key {
	case SortByDate:
		return func(a, b *domaindocket.Deadline) bool {
			return a.DeadlineDate.Before(b.DeadlineDate)
		}
	case SortByPriority:
		return func(a, b *domaindocket.Deadline) bool {
			return a.Priority.Rank() < b.Priority.Rank()
		}
	case SortByTitle:
		return func(a, b *domaindocket.Deadline) bool {
			return a.Title < b.Title
		}
	case SortByStatus:
		return func(a, b *domaindocket.Deadline) bool {
			return a.Status < b.Status
		}
	default:
		return nil
	}
}

// UpcomingWindow selects the open deadlines whose day count from now falls in
// [0, windowDays] and pairs each with its urgency, ascending by date.  The
// window is forward-looking only: overdue deadlines are excluded even while
// still open, and closed deadlines never appear.
func UpcomingWindow(
	deadlines []*domaindocket.Deadline,
	windowDays int,
	now time.Time,
	loc *time.Location,
) []dockettypes.UpcomingDeadline {
	if loc == nil {
		loc = time.Local
	}

	out := make([]dockettypes.UpcomingDeadline, 0, len(deadlines))
	for _, d := range deadlines {
		if !d.IsOpen() {
			continue
		}
		days := domaindocket.DaysUntil(d.DeadlineDate, now, loc)
		if days < 0 || days > windowDays {
			continue
		}
		out = append(out, dockettypes.UpcomingDeadline{
			Deadline: d.ToWire(),
			Urgency:  domaindocket.ClassifyUrgency(d.DeadlineDate, now, loc),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deadline.DeadlineDate.Before(out[j].Deadline.DeadlineDate)
	})
	return out
}
