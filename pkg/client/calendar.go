package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// CalendarClient accesses the month grid and the upcoming feed.
type CalendarClient struct {
	client *Client
}

// UpcomingFeed is the envelope returned by the upcoming endpoint.
type UpcomingFeed struct {
	WindowDays int                            `json:"window_days,omitempty"`
	Count      int                            `json:"count"`
	Entries    []dockettypes.UpcomingDeadline `json:"entries"`
}

// MonthGrid returns the 42-cell grid for (year, month).
func (cc *CalendarClient) MonthGrid(ctx context.Context, year int, month time.Month) (*dockettypes.CalendarMonth, error) {
	var out dockettypes.CalendarMonth
	path := fmt.Sprintf("/api/v1/calendar/%d/%d", year, int(month))
	if err := cc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upcoming returns the open deadlines due within windowDays.  Zero uses the
// server's configured default window.
func (cc *CalendarClient) Upcoming(ctx context.Context, windowDays int) (*UpcomingFeed, error) {
	path := "/api/v1/deadlines/upcoming"
	if windowDays > 0 {
		path += "?window=" + strconv.Itoa(windowDays)
	}

	var out UpcomingFeed
	if err := cc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
