package docket

import (
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// HighestPriority reduces a set of deadlines to the single most severe
// priority present, using the fixed order critical > high > normal > low.
// It returns nil for an empty input.  The reduction is order-independent:
// permuting the input never changes the result.
func HighestPriority(deadlines []*Deadline) *dockettypes.Priority {
	if len(deadlines) == 0 {
		return nil
	}
	best := deadlines[0].Priority
	for _, d := range deadlines[1:] {
		if d.Priority.Rank() < best.Rank() {
			best = d.Priority
		}
	}
	return &best
}

// PriorityColor maps each priority to the hex color used by calendar badges
// and list rows.  The switch is exhaustive over the enum; an unknown value
// falls through to the neutral color so a bad record degrades visibly rather
// than crashing a render.
func PriorityColor(p dockettypes.Priority) string {
	switch p {
	case dockettypes.PriorityCritical:
		return "#d32f2f"
	case dockettypes.PriorityHigh:
		return "#f57c00"
	case dockettypes.PriorityNormal:
		return "#1976d2"
	case dockettypes.PriorityLow:
		return "#757575"
	default:
		return "#9e9e9e"
	}
}

// StatusIcon maps each deadline status to its display glyph name.
func StatusIcon(s dockettypes.DeadlineStatus) string {
	switch s {
	case dockettypes.StatusPending:
		return "clock"
	case dockettypes.StatusCompleted:
		return "check-circle"
	case dockettypes.StatusMissed:
		return "alert-triangle"
	case dockettypes.StatusExtended:
		return "calendar-plus"
	case dockettypes.StatusCancelled:
		return "slash"
	default:
		return "help-circle"
	}
}

// TypeLabel maps each deadline type to its human-readable display label.
func TypeLabel(t dockettypes.DeadlineType) string {
	switch t {
	case dockettypes.TypeFiling:
		return "Filing"
	case dockettypes.TypeDiscovery:
		return "Discovery"
	case dockettypes.TypeMotion:
		return "Motion"
	case dockettypes.TypeHearing:
		return "Hearing"
	case dockettypes.TypeTrial:
		return "Trial"
	case dockettypes.TypeAppeal:
		return "Appeal"
	case dockettypes.TypeResponse:
		return "Response"
	case dockettypes.TypeExpertReport:
		return "Expert Report"
	case dockettypes.TypeBrief:
		return "Brief"
	default:
		return string(t)
	}
}
