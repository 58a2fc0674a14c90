package client

import (
	"context"
	"fmt"
	"net/url"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// ConflictsClient accesses per-case conflict reports.
type ConflictsClient struct {
	client *Client
}

// Get returns the retained conflict report for the case.  A case never
// checked reports status "unchecked".
func (cc *ConflictsClient) Get(ctx context.Context, caseID string) (*dockettypes.ConflictReport, error) {
	var out dockettypes.ConflictReport
	path := fmt.Sprintf("/api/v1/cases/%s/conflicts", url.PathEscape(caseID))
	if err := cc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh runs a synchronous conflict check and returns the new report.
func (cc *ConflictsClient) Refresh(ctx context.Context, caseID string) (*dockettypes.ConflictReport, error) {
	var out dockettypes.ConflictReport
	path := fmt.Sprintf("/api/v1/cases/%s/conflicts/refresh", url.PathEscape(caseID))
	if err := cc.client.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
