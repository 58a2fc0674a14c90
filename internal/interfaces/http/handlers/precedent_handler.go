package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/LitiDocket/internal/infrastructure/search/opensearch"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

// PrecedentHandler serves full-text precedent search and index maintenance.
type PrecedentHandler struct {
	searcher *opensearch.Searcher
	indexer  *opensearch.Indexer
}

// NewPrecedentHandler creates a PrecedentHandler.
func NewPrecedentHandler(searcher *opensearch.Searcher, indexer *opensearch.Indexer) *PrecedentHandler {
	return &PrecedentHandler{searcher: searcher, indexer: indexer}
}

// Search handles GET /api/v1/precedents/search.
//
// Query parameters: q (free text), court, jurisdiction, tags (comma
// separated), decided_from, decided_to (RFC 3339 dates), page, page_size.
func (h *PrecedentHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	query := opensearch.PrecedentQuery{
		Text:         q.Get("q"),
		Court:        q.Get("court"),
		Jurisdiction: q.Get("jurisdiction"),
		Page:         page,
		PageSize:     pageSize,
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				query.Tags = append(query.Tags, t)
			}
		}
	}

	var err error
	if query.DecidedFrom, err = parseDateParam(q.Get("decided_from")); err != nil {
		writeAppError(w, err)
		return
	}
	if query.DecidedTo, err = parseDateParam(q.Get("decided_to")); err != nil {
		writeAppError(w, err)
		return
	}

	results, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Index handles PUT /api/v1/precedents/{precedentID}, upserting one document.
func (h *PrecedentHandler) Index(w http.ResponseWriter, r *http.Request) {
	var p opensearch.Precedent
	if err := decodeJSON(r, &p); err != nil {
		writeAppError(w, err)
		return
	}
	p.ID = chi.URLParam(r, "precedentID")

	if err := h.indexer.IndexPrecedent(r.Context(), p); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/v1/precedents/{precedentID}.
func (h *PrecedentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "precedentID")

	if err := h.indexer.DeletePrecedent(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseDateParam parses an optional RFC 3339 date or datetime parameter.
func parseDateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, errors.Newf(errors.ErrCodeBadRequest, "date %q is not RFC 3339", v)
}
