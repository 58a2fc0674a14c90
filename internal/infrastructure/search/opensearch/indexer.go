package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

var (
	ErrIndexNotFound       = errors.New(errors.ErrCodeNotFound, "index not found")
	ErrIndexCreationFailed = errors.New(errors.ErrCodeInternal, "index creation failed")
	ErrDocumentIndexFailed = errors.New(errors.ErrCodeInternal, "document index failed")
)

// precedentIndex is the logical index name; the client prefixes it with the
// configured namespace.
const precedentIndex = "precedents"

// Precedent is a decided case indexed for research.  Attorneys search these
// when assessing how a court has ruled on similar questions.
type Precedent struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption"`
	Citation     string    `json:"citation"`
	Court        string    `json:"court"`
	Jurisdiction string    `json:"jurisdiction"`
	DecidedAt    time.Time `json:"decided_at"`
	Summary      string    `json:"summary"`
	Holding      string    `json:"holding"`
	Tags         []string  `json:"tags,omitempty"`
}

// IndexerConfig holds ingestion tuning for the Indexer.
type IndexerConfig struct {
	BulkBatchSize int
	RefreshPolicy string
}

// Indexer manages the precedent index and document ingestion.
type Indexer struct {
	client *Client
	config IndexerConfig
	logger logging.Logger
}

// NewIndexer creates an Indexer with sensible defaults.
func NewIndexer(client *Client, cfg IndexerConfig, logger logging.Logger) *Indexer {
	if cfg.BulkBatchSize == 0 {
		cfg.BulkBatchSize = 500
	}
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = "false"
	}
	return &Indexer{client: client, config: cfg, logger: logger}
}

// EnsureIndex creates the precedent index if it does not exist yet.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	name := i.client.IndexName(precedentIndex)

	exists, err := i.indexExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body, err := json.Marshal(precedentIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}

	req := opensearchapi.IndicesCreateRequest{
		Index: name,
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "failed to create index")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		// Concurrent startup races to the same index; the loser's
		// resource_already_exists rejection is a success here.
		if resp.StatusCode == 400 {
			if ok, _ := i.indexExists(ctx, name); ok {
				return nil
			}
		}
		return handleErrorResponse(resp, ErrIndexCreationFailed)
	}

	i.logger.Info("precedent index created", logging.String("index", name))
	return nil
}

// IndexPrecedent indexes or replaces a single precedent.
func (i *Indexer) IndexPrecedent(ctx context.Context, p Precedent) error {
	if p.ID == "" {
		return errors.New(errors.ErrCodeValidation, "precedent id is required")
	}

	body, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal precedent")
	}

	req := opensearchapi.IndexRequest{
		Index:      i.client.IndexName(precedentIndex),
		DocumentID: p.ID,
		Body:       bytes.NewReader(body),
		Refresh:    i.config.RefreshPolicy,
	}
	resp, err := req.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "failed to index precedent")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return handleErrorResponse(resp, ErrDocumentIndexFailed)
	}
	return nil
}

// BulkResult summarizes a bulk ingestion run.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []BulkItemError
}

// BulkItemError describes one failed item within a bulk request.
type BulkItemError struct {
	DocID  string
	Reason string
}

// BulkIndexPrecedents ingests precedents in batches.  Individual item
// failures are collected rather than aborting the run.
func (i *Indexer) BulkIndexPrecedents(ctx context.Context, precedents []Precedent) (*BulkResult, error) {
	result := &BulkResult{}
	if len(precedents) == 0 {
		return result, nil
	}

	indexName := i.client.IndexName(precedentIndex)

	for start := 0; start < len(precedents); start += i.config.BulkBatchSize {
		end := start + i.config.BulkBatchSize
		if end > len(precedents) {
			end = len(precedents)
		}

		var buf bytes.Buffer
		for _, p := range precedents[start:end] {
			docBytes, err := json.Marshal(p)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BulkItemError{DocID: p.ID, Reason: err.Error()})
				continue
			}
			fmt.Fprintf(&buf, `{"index":{"_index":"%s","_id":"%s"}}`+"\n", indexName, p.ID)
			buf.Write(docBytes)
			buf.WriteString("\n")
		}
		if buf.Len() == 0 {
			continue
		}

		req := opensearchapi.BulkRequest{
			Body:    bytes.NewReader(buf.Bytes()),
			Refresh: i.config.RefreshPolicy,
		}
		resp, err := req.Do(ctx, i.client.client)
		if err != nil {
			return result, errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "bulk request failed")
		}

		if resp.IsError() {
			resp.Body.Close()
			result.Failed += end - start
			result.Errors = append(result.Errors, BulkItemError{
				DocID:  "batch",
				Reason: fmt.Sprintf("bulk batch rejected with status %d", resp.StatusCode),
			})
			continue
		}

		var bulkResp struct {
			Errors bool `json:"errors"`
			Items  []map[string]struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"items"`
		}
		err = json.NewDecoder(resp.Body).Decode(&bulkResp)
		resp.Body.Close()
		if err != nil {
			return result, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
		}

		for _, item := range bulkResp.Items {
			for _, v := range item {
				if v.Status >= 200 && v.Status < 300 {
					result.Succeeded++
				} else {
					result.Failed++
					result.Errors = append(result.Errors, BulkItemError{DocID: v.ID, Reason: v.Error.Reason})
				}
				break
			}
		}
	}

	i.logger.Info("bulk precedent ingestion finished",
		logging.Int("total", len(precedents)),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// DeletePrecedent removes a precedent from the index.
func (i *Indexer) DeletePrecedent(ctx context.Context, id string) error {
	req := opensearchapi.DeleteRequest{
		Index:      i.client.IndexName(precedentIndex),
		DocumentID: id,
		Refresh:    i.config.RefreshPolicy,
	}
	resp, err := req.Do(ctx, i.client.client)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "failed to delete precedent")
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return errors.Newf(errors.ErrCodeNotFound, "precedent %s not found", id)
	}
	if resp.IsError() {
		return handleErrorResponse(resp, errors.New(errors.ErrCodeInternal, "delete precedent failed"))
	}
	return nil
}

func (i *Indexer) indexExists(ctx context.Context, name string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{Index: []string{name}}
	resp, err := req.Do(ctx, i.client.client)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "failed to check index existence")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, handleErrorResponse(resp, errors.New(errors.ErrCodeInternal, "check index existence failed"))
}

func handleErrorResponse(resp *opensearchapi.Response, defaultErr error) error {
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Reason != "" {
		return errors.Wrapf(defaultErr, errors.ErrCodeInternal, "OpenSearch error: %s - %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return errors.Wrapf(defaultErr, errors.ErrCodeInternal, "OpenSearch error status: %d", resp.StatusCode)
}

func precedentIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":           map[string]interface{}{"type": "keyword"},
				"caption":      map[string]interface{}{"type": "text"},
				"citation":     map[string]interface{}{"type": "keyword"},
				"court":        map[string]interface{}{"type": "keyword"},
				"jurisdiction": map[string]interface{}{"type": "keyword"},
				"decided_at":   map[string]interface{}{"type": "date"},
				"summary":      map[string]interface{}{"type": "text"},
				"holding":      map[string]interface{}{"type": "text"},
				"tags":         map[string]interface{}{"type": "keyword"},
			},
		},
	}
}
