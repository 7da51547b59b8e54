package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/store"
)

// PhotosHandler serves stored inspection photos.
type PhotosHandler struct {
	DB *sql.DB
}

// Get handles GET /api/photos/{id}. Photos are only visible to the employee
// that took them.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := store.GetPhoto(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if p == nil || p.EmpCode != GetClaims(r.Context()).EmpCode {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}

	w.Header().Set("Content-Type", p.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Header().Set("Cache-Control", "private, max-age=86400, immutable")
	w.Write(p.Data)
}

// deletePhotos removes the given images that are photos stored by this server
// for the requesting employee. Failures are only logged.
func deletePhotos(r *http.Request, db *sql.DB, images []model.Image) {
	empCode := GetClaims(r.Context()).EmpCode
	for _, img := range images {
		id, ok := strings.CutPrefix(img, photoPath)
		if !ok || id == "" {
			continue
		}
		if err := store.DeletePhoto(r.Context(), db, empCode, id); err != nil {
			slog.Error("deleting photo", "id", id, "error", err)
		}
	}
}
