package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// DeadlinesClient accesses the deadline resource.
type DeadlinesClient struct {
	client *Client
}

// CreateDeadlineRequest carries the fields for a new deadline.
type CreateDeadlineRequest struct {
	CaseID         string    `json:"case_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	DeadlineType   string    `json:"deadline_type"`
	Priority       string    `json:"priority"`
	DeadlineDate   time.Time `json:"deadline_date"`
	AlertIntervals []int     `json:"alert_intervals,omitempty"`
}

// UpdateDeadlineRequest carries editable fields; nil pointers leave the
// current value untouched.
type UpdateDeadlineRequest struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	DeadlineType   *string    `json:"deadline_type,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	DeadlineDate   *time.Time `json:"deadline_date,omitempty"`
	AlertIntervals []int      `json:"alert_intervals,omitempty"`
}

// ListDeadlinesQuery describes filter, sort, and pagination parameters.
type ListDeadlinesQuery struct {
	CaseID   string
	Type     string
	Priority string
	Status   string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

// DeadlineList is a page of deadlines.
type DeadlineList struct {
	Items []dockettypes.Deadline `json:"items"`
	ListMeta
}

// Create registers a new deadline.
func (dc *DeadlinesClient) Create(ctx context.Context, req *CreateDeadlineRequest) (*dockettypes.Deadline, error) {
	var out dockettypes.Deadline
	if err := dc.client.post(ctx, "/api/v1/deadlines", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one deadline by ID.
func (dc *DeadlinesClient) Get(ctx context.Context, id string) (*dockettypes.Deadline, error) {
	var out dockettypes.Deadline
	if err := dc.client.get(ctx, "/api/v1/deadlines/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the deadlines matching the query.
func (dc *DeadlinesClient) List(ctx context.Context, q ListDeadlinesQuery) (*DeadlineList, error) {
	params := url.Values{}
	setIfNonEmpty(params, "case_id", q.CaseID)
	setIfNonEmpty(params, "type", q.Type)
	setIfNonEmpty(params, "priority", q.Priority)
	setIfNonEmpty(params, "status", q.Status)
	setIfNonEmpty(params, "sort", q.Sort)
	setIfNonEmpty(params, "order", q.Order)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}

	path := "/api/v1/deadlines"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out DeadlineList
	if err := dc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update modifies a deadline.
func (dc *DeadlinesClient) Update(ctx context.Context, id string, req *UpdateDeadlineRequest) (*dockettypes.Deadline, error) {
	var out dockettypes.Deadline
	if err := dc.client.put(ctx, "/api/v1/deadlines/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a deadline.
func (dc *DeadlinesClient) Delete(ctx context.Context, id string) error {
	return dc.client.delete(ctx, "/api/v1/deadlines/"+url.PathEscape(id))
}

// Complete marks a deadline as completed.
func (dc *DeadlinesClient) Complete(ctx context.Context, id string) (*dockettypes.Deadline, error) {
	return dc.transition(ctx, id, "complete")
}

// Miss marks a deadline as missed.
func (dc *DeadlinesClient) Miss(ctx context.Context, id string) (*dockettypes.Deadline, error) {
	return dc.transition(ctx, id, "miss")
}

// Cancel marks a deadline as cancelled.
func (dc *DeadlinesClient) Cancel(ctx context.Context, id string) (*dockettypes.Deadline, error) {
	return dc.transition(ctx, id, "cancel")
}

// Extend moves a pending deadline to a later date.
func (dc *DeadlinesClient) Extend(ctx context.Context, id string, newDate time.Time) (*dockettypes.Deadline, error) {
	body := map[string]time.Time{"new_date": newDate}
	var out dockettypes.Deadline
	path := fmt.Sprintf("/api/v1/deadlines/%s/extend", url.PathEscape(id))
	if err := dc.client.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (dc *DeadlinesClient) transition(ctx context.Context, id, action string) (*dockettypes.Deadline, error) {
	var out dockettypes.Deadline
	path := fmt.Sprintf("/api/v1/deadlines/%s/%s", url.PathEscape(id), action)
	if err := dc.client.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setIfNonEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
