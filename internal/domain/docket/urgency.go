package docket

import (
	"fmt"
	"math"
	"time"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// urgentHorizonDays is the inclusive day count under which an open deadline
// is flagged urgent.
const urgentHorizonDays = 7

// weekLabelThresholdDays is the exclusive day count above which the label
// switches from days to weeks.
const weekLabelThresholdDays = 30

// DaysUntil returns the day-boundary-aware count of calendar days from now
// until deadlineDate, both interpreted in loc.  A deadline 23 hours away that
// crosses midnight still counts as 1 day; negative values mean overdue.
//
// The computation is pure: callers thread an explicit now so results are
// deterministic and testable.
func DaysUntil(deadlineDate, now time.Time, loc *time.Location) int {
	due := StartOfDay(deadlineDate, loc)
	today := StartOfDay(now, loc)
	// Rounding absorbs the one-hour skew of DST-shortened or -lengthened days.
	return int(math.Round(due.Sub(today).Hours() / 24))
}

// ClassifyUrgency derives the countdown label and urgency flag for a deadline
// date against an explicit now.  Label rules, evaluated in order:
//
//	days < 0        → "<abs> days overdue", urgent
//	days == 0       → "Due today", urgent
//	days == 1       → "Due tomorrow", urgent
//	1 < days <= 7   → "<days> days remaining", urgent
//	7 < days <= 30  → "<days> days remaining", not urgent
//	days > 30       → "<days/7> week(s) remaining", not urgent
//
// The result is never cached on the record: elapsed real time changes the
// output independent of any data mutation.
func ClassifyUrgency(deadlineDate, now time.Time, loc *time.Location) dockettypes.Urgency {
	days := DaysUntil(deadlineDate, now, loc)

	u := dockettypes.Urgency{DaysUntil: days}
	switch {
	case days < 0:
		u.Label = dockettypes.UrgencyLabel(fmt.Sprintf("%d days overdue", -days))
		u.Urgent = true
		u.Overdue = true
	case days == 0:
		u.Label = "Due today"
		u.Urgent = true
	case days == 1:
		u.Label = "Due tomorrow"
		u.Urgent = true
	case days <= urgentHorizonDays:
		u.Label = dockettypes.UrgencyLabel(fmt.Sprintf("%d days remaining", days))
		u.Urgent = true
	case days <= weekLabelThresholdDays:
		u.Label = dockettypes.UrgencyLabel(fmt.Sprintf("%d days remaining", days))
	default:
		weeks := days / 7
		unit := "weeks"
		if weeks == 1 {
			unit = "week"
		}
		u.Label = dockettypes.UrgencyLabel(fmt.Sprintf("%d %s remaining", weeks, unit))
	}
	return u
}
