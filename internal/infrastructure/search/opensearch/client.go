// Package opensearch provides the precedent-search backend: an index of
// decided cases that staff query when preparing filings.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

var (
	ErrInvalidConfig    = errors.New(errors.ErrCodeValidation, "invalid opensearch configuration")
	ErrConnectionFailed = errors.New(errors.ErrCodeDataSourceUnavailable, "opensearch connection failed")
)

// Client manages the OpenSearch connection and its health state.
type Client struct {
	client  *opensearch.Client
	cfg     config.OpenSearchConfig
	logger  logging.Logger
	healthy atomic.Bool
	cancel  context.CancelFunc
}

// NewClient builds a client and verifies connectivity with a ping.  A
// background loop keeps the health flag current for the readiness probe.
func NewClient(cfg config.OpenSearchConfig, logger logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, ErrInvalidConfig
	}

	transport := &http.Transport{MaxIdleConnsPerHost: 10}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.User,
		Password:      cfg.Password,
		Transport:     transport,
		MaxRetries:    3,
		RetryOnStatus: []int{429, 502, 503, 504},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create opensearch client")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{client: osClient, cfg: cfg, logger: logger, cancel: cancel}

	if err := c.Ping(ctx); err != nil {
		cancel()
		return nil, ErrConnectionFailed
	}
	go c.healthLoop(ctx)

	logger.Info("connected to OpenSearch", logging.Any("addresses", cfg.Addresses))
	return c, nil
}

// newClientWithTransport builds a client over a caller-supplied transport,
// for tests.  No ping, no health loop.
func newClientWithTransport(rt http.RoundTripper, cfg config.OpenSearchConfig, logger logging.Logger) (*Client, error) {
	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{"http://opensearch.test"},
		Transport: rt,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{client: osClient, cfg: cfg, logger: logger, cancel: func() {}}
	c.healthy.Store(true)
	return c, nil
}

// Ping checks cluster reachability and updates the health flag.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		c.healthy.Store(false)
		return errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "opensearch ping failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		c.healthy.Store(false)
		return errors.Newf(errors.ErrCodeDataSourceUnavailable, "opensearch ping returned %d", resp.StatusCode)
	}
	c.healthy.Store(true)
	return nil
}

// IsHealthy reports the last observed cluster health.
func (c *Client) IsHealthy() bool {
	return c.healthy.Load()
}

// IndexName prefixes an index with the configured namespace.
func (c *Client) IndexName(name string) string {
	prefix := c.cfg.IndexPrefix
	if prefix == "" {
		prefix = "litidocket"
	}
	return prefix + "-" + name
}

// Close stops the health loop.
func (c *Client) Close() error {
	c.cancel()
	return nil
}

func (c *Client) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev := c.healthy.Load()
			err := c.Ping(ctx)
			curr := c.healthy.Load()
			if prev && !curr {
				c.logger.Error("OpenSearch cluster became unhealthy", logging.Err(err))
			} else if !prev && curr {
				c.logger.Info("OpenSearch cluster recovered")
			}
		}
	}
}
