package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PrecedentsClient accesses the full-text precedent search.
type PrecedentsClient struct {
	client *Client
}

// Precedent is one decision in the research index.
type Precedent struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption"`
	Citation     string    `json:"citation,omitempty"`
	Court        string    `json:"court,omitempty"`
	Jurisdiction string    `json:"jurisdiction,omitempty"`
	DecidedAt    time.Time `json:"decided_at,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Holding      string    `json:"holding,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
}

// PrecedentSearchQuery describes a search request.
type PrecedentSearchQuery struct {
	Text         string
	Court        string
	Jurisdiction string
	Tags         []string
	DecidedFrom  string // RFC 3339 date
	DecidedTo    string
	Page         int
	PageSize     int
}

// PrecedentHit is one search result with its relevance score.
type PrecedentHit struct {
	Precedent  Precedent           `json:"precedent"`
	Score      float64             `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

// PrecedentSearchResults is one page of search hits.
type PrecedentSearchResults struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	TookMs   int64          `json:"took_ms"`
	Hits     []PrecedentHit `json:"hits"`
}

// Search runs a full-text query over the precedent index.
func (pc *PrecedentsClient) Search(ctx context.Context, q PrecedentSearchQuery) (*PrecedentSearchResults, error) {
	params := url.Values{}
	setIfNonEmpty(params, "q", q.Text)
	setIfNonEmpty(params, "court", q.Court)
	setIfNonEmpty(params, "jurisdiction", q.Jurisdiction)
	setIfNonEmpty(params, "decided_from", q.DecidedFrom)
	setIfNonEmpty(params, "decided_to", q.DecidedTo)
	if len(q.Tags) > 0 {
		params.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}

	path := "/api/v1/precedents/search"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out PrecedentSearchResults
	if err := pc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Index upserts a precedent document.
func (pc *PrecedentsClient) Index(ctx context.Context, p *Precedent) error {
	return pc.client.put(ctx, "/api/v1/precedents/"+url.PathEscape(p.ID), p, nil)
}

// Delete removes a precedent from the index.
func (pc *PrecedentsClient) Delete(ctx context.Context, id string) error {
	return pc.client.delete(ctx, "/api/v1/precedents/"+url.PathEscape(id))
}
