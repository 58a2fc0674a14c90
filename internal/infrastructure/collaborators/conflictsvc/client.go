// Package conflictsvc is the HTTP client for the external scheduling-conflict
// collaborator.  Conflict detection happens entirely on the collaborator's
// side; this client only ships the question and decodes the verdict.
package conflictsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/LitiDocket/internal/application/conflictcheck"
	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

var (
	ErrInvalidConfig      = errors.New(errors.ErrCodeValidation, "invalid conflict service configuration")
	ErrServiceUnavailable = errors.New(errors.ErrCodeConflictCheckFailed, "conflict service unavailable")
)

// Client talks to the conflict-detection collaborator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	logger     logging.Logger
}

var _ conflictcheck.Checker = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client for the configured collaborator endpoint.
func NewClient(cfg config.ConflictConfig, logger logging.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 2
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retries:    cfg.RetryAttempts,
		retryDelay: 200 * time.Millisecond,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CheckConflicts asks the collaborator for scheduling collisions on a case.
// An empty slice means the collaborator answered and found none.
func (c *Client) CheckConflicts(ctx context.Context, caseID common.CaseID) ([]dockettypes.ConflictMatch, error) {
	endpoint := fmt.Sprintf("%s/api/v1/cases/%s/conflicts", c.baseURL, url.PathEscape(string(caseID)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build conflict request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(req)
	if err != nil {
		return nil, ErrServiceUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Newf(errors.ErrCodeCaseNotFound, "case %s unknown to conflict service", caseID)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Newf(errors.ErrCodeConflictCheckFailed,
			"conflict check returned status %d", resp.StatusCode)
	}

	var payload struct {
		Matches []dockettypes.ConflictMatch `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode conflict response")
	}
	return payload.Matches, nil
}

// Health probes the collaborator's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrServiceUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrServiceUnavailable
	}
	return nil
}

// doWithRetry retries transport failures and 5xx answers with exponential
// backoff.  4xx answers return immediately; they will not improve on retry.
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(c.retryDelay * time.Duration(1<<(attempt-1))):
			}
			c.logger.Debug("retrying conflict service request",
				logging.Int("attempt", attempt), logging.String("url", req.URL.Path))
		}

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if resp != nil {
			resp.Body.Close()
		}
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("conflict service answered %d after %d attempts", resp.StatusCode, c.retries+1)
}
