package docket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// fixedNow pins the classifier clock to a mid-day instant so day math is
// unambiguous.
var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestClassifyUrgency_BoundaryTable(t *testing.T) {
	cases := []struct {
		days    int
		label   string
		urgent  bool
		overdue bool
	}{
		{-1, "1 days overdue", true, true},
		{-14, "14 days overdue", true, true},
		{0, "Due today", true, false},
		{1, "Due tomorrow", true, false},
		{2, "2 days remaining", true, false},
		{7, "7 days remaining", true, false},
		{8, "8 days remaining", false, false},
		{30, "30 days remaining", false, false},
		{31, "4 weeks remaining", false, false},
		{70, "10 weeks remaining", false, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.label, func(t *testing.T) {
			due := fixedNow.AddDate(0, 0, tc.days)
			u := ClassifyUrgency(due, fixedNow, time.UTC)

			assert.Equal(t, tc.days, u.DaysUntil)
			assert.Equal(t, dockettypes.UrgencyLabel(tc.label), u.Label)
			assert.Equal(t, tc.urgent, u.Urgent)
			assert.Equal(t, tc.overdue, u.Overdue)
		})
	}
}

func TestDaysUntil_DayBoundaryAware(t *testing.T) {
	// 23 hours ahead, but across midnight: still one day away.
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 11, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysUntil(due, now, time.UTC))

	// Same calendar day regardless of hours elapsed.
	sameDay := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysUntil(sameDay, now, time.UTC))
}

func TestDaysUntil_DSTTransition(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// US spring-forward 2026-03-08: the day is 23 hours long.
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, ny)
	due := time.Date(2026, 3, 9, 12, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysUntil(due, now, ny))
}

func TestClassifyUrgency_PureOverTime(t *testing.T) {
	due := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)

	week := ClassifyUrgency(due, fixedNow, time.UTC)
	assert.True(t, week.Urgent)
	assert.Equal(t, 7, week.DaysUntil)

	// The same deadline a day later reports one fewer day: the classifier
	// depends only on its arguments, never on stored state.
	later := ClassifyUrgency(due, fixedNow.AddDate(0, 0, 1), time.UTC)
	assert.Equal(t, 6, later.DaysUntil)
}
