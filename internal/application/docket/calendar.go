package docket

import (
	"context"
	"fmt"
	"time"

	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// gridCells is the fixed size of a month view: six full Sunday-first weeks.
const gridCells = 42

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// CalendarService builds month grids and the upcoming feed from persisted
// deadlines.
type CalendarService interface {
	// MonthGrid returns the 42-cell grid for (year, month), bucketing every
	// deadline whose date falls on a visible cell.
	MonthGrid(ctx context.Context, year int, month time.Month) (*dockettypes.CalendarMonth, error)

	// Upcoming returns the open deadlines due within windowDays of now,
	// each paired with its urgency classification, ascending by date.
	Upcoming(ctx context.Context, windowDays int) ([]dockettypes.UpcomingDeadline, error)
}

// CalendarServiceConfig holds tunables.
type CalendarServiceConfig struct {
	UpcomingWindowDays int
	CacheTTL           time.Duration
	Location           *time.Location
}

type calendarServiceImpl struct {
	repo   domaindocket.DeadlineRepository
	cache  CachePort
	logger Logger
	now    Clock
	cfg    CalendarServiceConfig
}

// NewCalendarService constructs a CalendarService.  A nil clock defaults to
// time.Now; a nil location defaults to the host's local zone.
func NewCalendarService(
	repo domaindocket.DeadlineRepository,
	cache CachePort,
	logger Logger,
	cfg CalendarServiceConfig,
	now Clock,
) CalendarService {
	if now == nil {
		now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.UpcomingWindowDays <= 0 {
		cfg.UpcomingWindowDays = 30
	}
	return &calendarServiceImpl{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    now,
		cfg:    cfg,
	}
}

// monthCacheKey names the cached grid for one month.
func monthCacheKey(year int, month time.Month) string {
	return fmt.Sprintf("calendar:grid:%04d-%02d", year, int(month))
}

func (s *calendarServiceImpl) MonthGrid(ctx context.Context, year int, month time.Month) (*dockettypes.CalendarMonth, error) {
	if month < time.January || month > time.December {
		return nil, errors.Newf(errors.ErrCodeCalendarMonthInvalid, "month %d is out of range [1, 12]", month)
	}
	if year < 1 {
		return nil, errors.Newf(errors.ErrCodeCalendarMonthInvalid, "year %d must be positive", year)
	}

	key := monthCacheKey(year, month)
	if s.cache != nil {
		var cached dockettypes.CalendarMonth
		if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached.Days) == gridCells {
			return &cached, nil
		}
	}

	// Fetch every deadline visible on the grid, including the leading and
	// trailing out-of-month days.
	loc := s.cfg.Location
	gridStart := gridStartDate(year, month, loc)
	gridEnd := gridStart.AddDate(0, 0, gridCells)
	deadlines, err := s.repo.ListInRange(ctx, gridStart, gridEnd)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load deadlines for month grid")
	}

	grid := BuildMonthGrid(year, month, deadlines, s.now(), loc)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, grid, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("calendar: grid cache write failed", "key", key, "error", err)
		}
	}

	s.logger.Debug("calendar grid built",
		"year", year, "month", int(month), "deadlines", len(deadlines))
	return grid, nil
}

func (s *calendarServiceImpl) Upcoming(ctx context.Context, windowDays int) ([]dockettypes.UpcomingDeadline, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.UpcomingWindowDays
	}
	now := s.now()

	deadlines, err := s.repo.ListOpenDueWithin(ctx, now, windowDays)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load upcoming deadlines")
	}

	return UpcomingWindow(deadlines, windowDays, now, s.cfg.Location), nil
}

// ---------------------------------------------------------------------------
// Pure grid construction
// ---------------------------------------------------------------------------

// gridStartDate returns the Sunday that opens the 6-week grid for the month.
func gridStartDate(year int, month time.Month, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// Weekday() is already 0=Sunday; step back to the opening Sunday.
	return first.AddDate(0, 0, -int(first.Weekday()))
}

// BuildMonthGrid assembles the 42-cell Sunday-first grid for (year, month).
// Leading cells come from the tail of the previous month and trailing cells
// from the head of the next month, with year rollover handled by time.Date's
// normalization at both boundaries.  Bucketing is a calendar-day equality
// test on the deadline date; isToday is computed once from the supplied now
// snapshot so a render pass cannot flicker across a midnight boundary.
//
// The function is pure: no side effects, fully determined by its arguments.
func BuildMonthGrid(
	year int,
	month time.Month,
	deadlines []*domaindocket.Deadline,
	now time.Time,
	loc *time.Location,
) *dockettypes.CalendarMonth {
	if loc == nil {
		loc = time.Local
	}

	// Pre-index deadlines by (year, month, day) so bucketing is
	// O(days + deadlines) rather than O(days × deadlines).
	type dayKey struct {
		y int
		m time.Month
		d int
	}
	buckets := make(map[dayKey][]*domaindocket.Deadline, len(deadlines))
	for _, d := range deadlines {
		t := d.DeadlineDate.In(loc)
		k := dayKey{t.Year(), t.Month(), t.Day()}
		buckets[k] = append(buckets[k], d)
	}

	start := gridStartDate(year, month, loc)
	today := domaindocket.StartOfDay(now, loc)

	days := make([]dockettypes.CalendarDay, 0, gridCells)
	for i := 0; i < gridCells; i++ {
		date := start.AddDate(0, 0, i)
		bucket := buckets[dayKey{date.Year(), date.Month(), date.Day()}]

		cell := dockettypes.CalendarDay{
			Date:            date,
			InMonth:         date.Month() == month && date.Year() == year,
			IsToday:         date.Equal(today),
			Deadlines:       make([]dockettypes.Deadline, 0, len(bucket)),
			HighestPriority: domaindocket.HighestPriority(bucket),
		}
		for _, d := range bucket {
			cell.Deadlines = append(cell.Deadlines, d.ToWire())
		}
		days = append(days, cell)
	}

	return &dockettypes.CalendarMonth{
		Year:  year,
		Month: month,
		Days:  days,
	}
}
