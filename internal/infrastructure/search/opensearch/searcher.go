package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	highlightPreTag  = "<em>"
	highlightPostTag = "</em>"
)

// PrecedentQuery describes a precedent search.  Text runs full-text over
// caption, summary, and holding; the remaining fields filter conjunctively.
type PrecedentQuery struct {
	Text         string
	Court        string
	Jurisdiction string
	Tags         []string
	DecidedFrom  *time.Time
	DecidedTo    *time.Time
	Page         int
	PageSize     int
}

// PrecedentHit is one matched precedent with its relevance score and any
// highlighted fragments.
type PrecedentHit struct {
	Precedent  Precedent           `json:"precedent"`
	Score      float64             `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

// PrecedentResults is a page of search hits.
type PrecedentResults struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	TookMs   int64          `json:"took_ms"`
	Hits     []PrecedentHit `json:"hits"`
}

// Searcher runs precedent queries against the index.
type Searcher struct {
	client *Client
	logger logging.Logger
}

// NewSearcher creates a Searcher over an established client.
func NewSearcher(client *Client, logger logging.Logger) *Searcher {
	return &Searcher{client: client, logger: logger}
}

// Search executes a precedent query and returns one page of hits.
func (s *Searcher) Search(ctx context.Context, q PrecedentQuery) (*PrecedentResults, error) {
	q = s.normalize(q)

	body, err := json.Marshal(s.buildDSL(q))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal search query")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{s.client.IndexName(precedentIndex)},
		Body:  bytes.NewReader(body),
	}

	start := time.Now()
	resp, err := req.Do(ctx, s.client.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeTimeout, "precedent search timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "precedent search request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, handleErrorResponse(resp, errors.New(errors.ErrCodeSearchFailed, "precedent search failed"))
	}

	result, err := s.parseResponse(resp.Body, q)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("precedent search executed",
		logging.String("text", q.Text),
		logging.Int64("total", result.Total),
		logging.Int64("took_ms", time.Since(start).Milliseconds()))
	return result, nil
}

// Count returns the number of precedents matching the query, ignoring paging.
func (s *Searcher) Count(ctx context.Context, q PrecedentQuery) (int64, error) {
	dsl := s.buildDSL(s.normalize(q))
	body, err := json.Marshal(map[string]interface{}{"query": dsl["query"]})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal count query")
	}

	req := opensearchapi.CountRequest{
		Index: []string{s.client.IndexName(precedentIndex)},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, s.client.client)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "count request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, handleErrorResponse(resp, errors.New(errors.ErrCodeSearchFailed, "precedent count failed"))
	}

	var countResp struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&countResp); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode count response")
	}
	return countResp.Count, nil
}

func (s *Searcher) normalize(q PrecedentQuery) PrecedentQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	limit := maxPageSize
	if s.client.cfg.SearchSize > 0 && s.client.cfg.SearchSize < limit {
		limit = s.client.cfg.SearchSize
	}
	if q.PageSize > limit {
		q.PageSize = limit
	}
	return q
}

func (s *Searcher) buildDSL(q PrecedentQuery) map[string]interface{} {
	var must []interface{}
	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"caption^2", "summary", "holding"},
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	var filter []interface{}
	if q.Court != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"court": q.Court},
		})
	}
	if q.Jurisdiction != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"jurisdiction": q.Jurisdiction},
		})
	}
	if len(q.Tags) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"tags": q.Tags},
		})
	}
	if q.DecidedFrom != nil || q.DecidedTo != nil {
		bounds := map[string]interface{}{}
		if q.DecidedFrom != nil {
			bounds["gte"] = q.DecidedFrom.Format(time.RFC3339)
		}
		if q.DecidedTo != nil {
			bounds["lt"] = q.DecidedTo.Format(time.RFC3339)
		}
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"decided_at": bounds},
		})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	dsl := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  (q.Page - 1) * q.PageSize,
		"size":  q.PageSize,
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"decided_at": map[string]interface{}{"order": "desc"}},
		},
	}

	if q.Text != "" {
		dsl["highlight"] = map[string]interface{}{
			"pre_tags":  []string{highlightPreTag},
			"post_tags": []string{highlightPostTag},
			"fields": map[string]interface{}{
				"caption": map[string]interface{}{},
				"summary": map[string]interface{}{},
				"holding": map[string]interface{}{},
			},
		}
	}
	return dsl
}

func (s *Searcher) parseResponse(body io.Reader, q PrecedentQuery) (*PrecedentResults, error) {
	var raw struct {
		Took int64 `json:"took"`
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Score     float64             `json:"_score"`
				Source    Precedent           `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	result := &PrecedentResults{
		Total:    raw.Hits.Total.Value,
		Page:     q.Page,
		PageSize: q.PageSize,
		TookMs:   raw.Took,
		Hits:     make([]PrecedentHit, 0, len(raw.Hits.Hits)),
	}
	for _, h := range raw.Hits.Hits {
		result.Hits = append(result.Hits, PrecedentHit{
			Precedent:  h.Source,
			Score:      h.Score,
			Highlights: h.Highlight,
		})
	}
	return result, nil
}
