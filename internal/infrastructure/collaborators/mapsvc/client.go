// Package mapsvc is the HTTP client for the external geospatial collaborator
// that scores venue compactness and aligns spatial layers.
package mapsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/LitiDocket/internal/application/mapping"
	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

var ErrInvalidConfig = errors.New(errors.ErrCodeValidation, "invalid mapping service configuration")

// Client talks to the mapping collaborator over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

var _ mapping.Port = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client for the configured collaborator endpoint.
func NewClient(cfg config.MappingConfig, logger logging.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CalculateCompactness submits a geometry for compactness scoring.
func (c *Client) CalculateCompactness(ctx context.Context, req *mapping.CompactnessRequest) (*mapping.CompactnessResult, error) {
	var result mapping.CompactnessResult
	if err := c.post(ctx, "/api/v1/compactness", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AlignSpatial submits two layers for grid-based alignment.
func (c *Client) AlignSpatial(ctx context.Context, req *mapping.AlignmentRequest) (*mapping.AlignmentResult, error) {
	var result mapping.AlignmentResult
	if err := c.post(ctx, "/api/v1/align", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health probes the collaborator's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMappingUnavailable, "mapping service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrCodeMappingUnavailable, "mapping service health returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal mapping request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build mapping request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMappingUnavailable, "mapping service unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return errors.Newf(errors.ErrCodeValidation, "mapping service rejected request: %s", apiErr.Message)
	case resp.StatusCode != http.StatusOK:
		return errors.Newf(errors.ErrCodeMappingUnavailable, "mapping service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode mapping response")
	}

	c.logger.Debug("mapping collaborator call completed",
		logging.String("path", path),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
