package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

func newTestSearcher(t *testing.T, serverURL string, cfg config.OpenSearchConfig) *Searcher {
	t.Helper()
	cfg.IndexPrefix = "test"
	return NewSearcher(newTestClient(t, serverURL, cfg), logging.NewNopLogger())
}

func searchResponse(totalHits int64, hits string) string {
	return `{
		"took": 7,
		"hits": {
			"total": {"value": ` + jsonInt(totalHits) + `},
			"hits": [` + hits + `]
		}
	}`
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestSearcher_SearchParsesHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.Contains(r.URL.Path, "test-precedents"))
		w.Write([]byte(searchResponse(2, `
			{"_id": "prec-1", "_score": 2.4,
			 "_source": {"id": "prec-1", "caption": "Hargrove v. Meridian Ins. Co.", "court": "9th Cir."},
			 "highlight": {"summary": ["late <em>notice</em> of claim"]}},
			{"_id": "prec-2", "_score": 1.1,
			 "_source": {"id": "prec-2", "caption": "In re Walden Shipping", "court": "5th Cir."}}
		`)))
	}))
	defer server.Close()

	searcher := newTestSearcher(t, server.URL, config.OpenSearchConfig{})

	result, err := searcher.Search(context.Background(), PrecedentQuery{Text: "notice"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, int64(7), result.TookMs)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "Hargrove v. Meridian Ins. Co.", result.Hits[0].Precedent.Caption)
	assert.Equal(t, 2.4, result.Hits[0].Score)
	assert.Equal(t, []string{"late <em>notice</em> of claim"}, result.Hits[0].Highlights["summary"])
	assert.Empty(t, result.Hits[1].Highlights)
}

func TestSearcher_QueryDSL(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(searchResponse(0, "")))
	}))
	defer server.Close()

	searcher := newTestSearcher(t, server.URL, config.OpenSearchConfig{})
	from := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := searcher.Search(context.Background(), PrecedentQuery{
		Text:         "notice prejudice",
		Court:        "9th Cir.",
		Jurisdiction: "federal",
		Tags:         []string{"insurance"},
		DecidedFrom:  &from,
		Page:         3,
		PageSize:     10,
	})
	require.NoError(t, err)

	boolQuery := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "notice prejudice", multiMatch["query"])

	filters := boolQuery["filter"].([]interface{})
	assert.Len(t, filters, 4, "court, jurisdiction, tags, and date range filters")

	assert.Equal(t, float64(20), captured["from"], "page 3 with size 10 starts at offset 20")
	assert.Equal(t, float64(10), captured["size"])
	assert.Contains(t, captured, "highlight")
}

func TestSearcher_MatchAllWithoutText(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(searchResponse(0, "")))
	}))
	defer server.Close()

	searcher := newTestSearcher(t, server.URL, config.OpenSearchConfig{})

	_, err := searcher.Search(context.Background(), PrecedentQuery{Court: "9th Cir."})
	require.NoError(t, err)

	boolQuery := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	assert.Contains(t, must[0], "match_all")
	assert.NotContains(t, captured, "highlight", "no text query means nothing to highlight")
}

func TestSearcher_PageSizeCappedByConfig(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(searchResponse(0, "")))
	}))
	defer server.Close()

	searcher := newTestSearcher(t, server.URL, config.OpenSearchConfig{SearchSize: 25})

	result, err := searcher.Search(context.Background(), PrecedentQuery{PageSize: 500})
	require.NoError(t, err)

	assert.Equal(t, float64(25), captured["size"])
	assert.Equal(t, 25, result.PageSize)
	assert.Equal(t, 1, result.Page, "page defaults to 1")
}

func TestSearcher_SearchFailedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "parsing_exception", "reason": "unknown field"}}`))
	}))
	defer server.Close()

	searcher := newTestSearcher(t, server.URL, config.OpenSearchConfig{})

	_, err := searcher.Search(context.Background(), PrecedentQuery{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing_exception")
}

func TestSearcher_ClusterUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	searcher := newTestSearcher(t, server.URL, config.OpenSearchConfig{})

	_, err := searcher.Search(context.Background(), PrecedentQuery{Text: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDataSourceUnavailable))
}

func TestSearcher_Count(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "_count"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "query")
		assert.NotContains(t, body, "from", "count body carries only the query")

		w.Write([]byte(`{"count": 42}`))
	}))
	defer server.Close()

	searcher := newTestSearcher(t, server.URL, config.OpenSearchConfig{})

	n, err := searcher.Count(context.Background(), PrecedentQuery{Text: "notice"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}
