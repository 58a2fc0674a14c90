// Package scoringsvc is the HTTP client for the document-relevance inference
// collaborator.  The model runs on the collaborator's side; this client ships
// the document content and decodes the score.
package scoringsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/LitiDocket/internal/application/triage"
	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

var (
	ErrInvalidConfig      = errors.New(errors.ErrCodeValidation, "invalid scoring service configuration")
	ErrServiceUnavailable = errors.New(errors.ErrCodeScoringFailed, "scoring service unavailable")
)

// maxDocumentBytes bounds how much content is buffered for one request.
const maxDocumentBytes = 32 << 20

// Client talks to the inference collaborator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	logger     logging.Logger
}

var _ triage.Scorer = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client for the configured collaborator endpoint.
func NewClient(cfg config.ScoringConfig, logger logging.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
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

// Score sends the document content for inference and returns the relevance
// and privilege scores, each in [0, 1].  The content is buffered so transport
// failures can retry.
func (c *Client) Score(ctx context.Context, documentID string, content io.Reader) (triage.DocumentScores, error) {
	var none triage.DocumentScores

	body, err := io.ReadAll(io.LimitReader(content, maxDocumentBytes+1))
	if err != nil {
		return none, errors.Wrapf(err, errors.ErrCodeScoringFailed, "reading document %s", documentID)
	}
	if len(body) > maxDocumentBytes {
		return none, errors.Newf(errors.ErrCodeValidation,
			"document %s exceeds the %d byte scoring limit", documentID, maxDocumentBytes)
	}

	endpoint := fmt.Sprintf("%s/api/v1/score/%s", c.baseURL, url.PathEscape(documentID))
	resp, err := c.postWithRetry(ctx, endpoint, body)
	if err != nil {
		return none, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return none, errors.Newf(errors.ErrCodeScoringFailed,
			"scoring service rejected document %s", documentID)
	case resp.StatusCode != http.StatusOK:
		return none, errors.Newf(errors.ErrCodeScoringFailed,
			"scoring service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Score          float64 `json:"score"`
		PrivilegeScore float64 `json:"privilege_score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return none, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode score response")
	}
	for name, v := range map[string]float64{
		"score": payload.Score, "privilege_score": payload.PrivilegeScore,
	} {
		if v < 0 || v > 1 {
			return none, errors.Newf(errors.ErrCodeScoringFailed,
				"%s %g for document %s is out of range [0, 1]", name, v, documentID)
		}
	}
	return triage.DocumentScores{
		Relevance: payload.Score,
		Privilege: payload.PrivilegeScore,
	}, nil
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

// postWithRetry retries transport failures and 5xx answers with exponential
// backoff.  4xx answers return immediately; they will not improve on retry.
func (c *Client) postWithRetry(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(1<<(attempt-1))):
			}
			c.logger.Debug("retrying scoring service request",
				logging.Int("attempt", attempt), logging.String("url", endpoint))
		}

		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build scoring request")
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			err = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}

	return nil, ErrServiceUnavailable
}
