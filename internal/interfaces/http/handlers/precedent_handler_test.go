package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/internal/infrastructure/search/opensearch"
)

// newPrecedentRouter points a real search client at the supplied fake
// cluster and mounts the precedent routes on a chi router.
func newPrecedentRouter(t *testing.T, cluster http.Handler) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead && r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK) // ping
			return
		}
		cluster.ServeHTTP(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := opensearch.NewClient(config.OpenSearchConfig{
		Addresses:   []string{server.URL},
		IndexPrefix: "test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	h := NewPrecedentHandler(
		opensearch.NewSearcher(client, logging.NewNopLogger()),
		opensearch.NewIndexer(client, opensearch.IndexerConfig{}, logging.NewNopLogger()),
	)
	r := chi.NewRouter()
	r.Get("/precedents/search", h.Search)
	r.Put("/precedents/{precedentID}", h.Index)
	r.Delete("/precedents/{precedentID}", h.Delete)
	return r
}

func TestPrecedentHandler_Search(t *testing.T) {
	var captured map[string]interface{}
	cluster := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/test-precedents/_search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"took": 4,
			"hits": {
				"total": {"value": 1},
				"hits": [{
					"_score": 2.1,
					"_source": {"id": "prec-1", "caption": "Hargrove v. Meridian Ins. Co.", "court": "9th Cir."}
				}]
			}
		}`))
	})
	router := newPrecedentRouter(t, cluster)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/precedents/search?q=coverage&court=9th+Cir.&tags=insurance,appeal&decided_from=2020-01-01", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var results opensearch.PrecedentResults
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	assert.Equal(t, int64(1), results.Total)
	require.Len(t, results.Hits, 1)
	assert.Equal(t, "Hargrove v. Meridian Ins. Co.", results.Hits[0].Precedent.Caption)

	// The handler translated the query parameters into the search body.
	require.NotNil(t, captured)
	body, _ := json.Marshal(captured)
	assert.Contains(t, string(body), "coverage")
	assert.Contains(t, string(body), "insurance")
}

func TestPrecedentHandler_SearchRejectsBadDate(t *testing.T) {
	router := newPrecedentRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("cluster must not be reached on invalid input")
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/precedents/search?decided_from=last-year", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrecedentHandler_IndexUsesPathID(t *testing.T) {
	var indexedPath string
	var indexed opensearch.Precedent
	cluster := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		indexedPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&indexed))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result": "created"}`))
	})
	router := newPrecedentRouter(t, cluster)

	body := `{"id":"ignored","caption":"Hargrove v. Meridian Ins. Co.","court":"9th Cir."}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/precedents/prec-7", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/test-precedents/_doc/prec-7", indexedPath)
	assert.Equal(t, "prec-7", indexed.ID, "path ID overrides the body ID")
}

func TestPrecedentHandler_DeleteMissing(t *testing.T) {
	cluster := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"result": "not_found"}`))
	})
	router := newPrecedentRouter(t, cluster)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/precedents/prec-404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
