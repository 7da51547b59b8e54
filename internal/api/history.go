package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/store"
)

// HistoryHandler serves submitted inspections.
type HistoryHandler struct {
	DB *sql.DB
}

type revisionDetail struct {
	model.Revision
	State json.RawMessage `json:"state"`
}

// List handles GET /api/revisions.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	revisions, err := store.ListRevisions(r.Context(), h.DB, GetClaims(r.Context()).EmpCode)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list revisions")
		return
	}
	if revisions == nil {
		revisions = []model.Revision{}
	}
	jsonResponse(w, http.StatusOK, revisions)
}

// Get handles GET /api/revisions/{id}.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	rev, err := store.GetRevision(r.Context(), h.DB, GetClaims(r.Context()).EmpCode, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get revision")
		return
	}
	if rev == nil {
		jsonError(w, http.StatusNotFound, "revision not found")
		return
	}
	jsonResponse(w, http.StatusOK, revisionDetail{Revision: *rev, State: rev.State})
}
