package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/erazemk/taller/internal/httpclient"
	"github.com/erazemk/taller/internal/imaging"
	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/revision"
	"github.com/erazemk/taller/internal/service"
	"github.com/erazemk/taller/internal/store"
)

// photoPath prefixes the URIs of photos stored by this server.
const photoPath = "/api/photos/"

// RevisionHandler handles the endpoints of the inspection in progress.
type RevisionHandler struct {
	DB           *sql.DB
	Upstream     httpclient.Getter
	Revisions    *revision.Registry
	MaxDimension int
}

type addItemRequest struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type submitRequest struct {
	Cita int `json:"cita"`
}

type photoResponse struct {
	Applied bool        `json:"applied"`
	Image   model.Image `json:"image,omitempty"`
}

func (h *RevisionHandler) current(r *http.Request) *revision.Store {
	return h.Revisions.Get(GetClaims(r.Context()).EmpCode)
}

func (h *RevisionHandler) dispatch(w http.ResponseWriter, r *http.Request, a revision.Action) {
	applied := h.current(r).Dispatch(a)
	jsonResponse(w, http.StatusOK, appliedResponse{Applied: applied})
}

// dispatchDropped applies a and deletes the stored photos it detached.
func (h *RevisionHandler) dispatchDropped(r *http.Request, a revision.Action) bool {
	applied, dropped := h.current(r).DispatchDropped(a)
	deletePhotos(r, h.DB, dropped)
	return applied
}

// Get handles GET /api/revision.
func (h *RevisionHandler) Get(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.current(r).Snapshot())
}

// SetCategories handles PUT /api/revision/categories.
func (h *RevisionHandler) SetCategories(w http.ResponseWriter, r *http.Request) {
	var categories []model.Category
	if err := decodeJSON(r, &categories); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.dispatch(w, r, revision.LoadCategories{Categories: categories})
}

// LoadCategories handles POST /api/revision/categories/load, replacing the
// checklist with the one published by the upstream API.
func (h *RevisionHandler) LoadCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := service.GetMaintenanceItems(r.Context(), h.Upstream)
	if err != nil {
		upstreamError(w, err)
		return
	}

	st := h.current(r)
	st.Dispatch(revision.LoadCategories{Categories: categories})
	jsonResponse(w, http.StatusOK, st.Snapshot())
}

// Reset handles POST /api/revision/reset.
// Photos attached to the inspection are deleted.
func (h *RevisionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	applied := h.dispatchDropped(r, revision.ResetAll{})
	jsonResponse(w, http.StatusOK, appliedResponse{Applied: applied})
}

// Activate handles POST /api/revision/items/{code}/activate.
func (h *RevisionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, revision.Activate{Code: r.PathValue("code")})
}

// Deactivate handles POST /api/revision/items/{code}/deactivate.
func (h *RevisionHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, revision.Deactivate{Code: r.PathValue("code")})
}

// AddItem handles POST /api/revision/added.
func (h *RevisionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name is required")
		return
	}
	h.dispatch(w, r, revision.AddItem{Name: req.Name, Active: req.Active})
}

// RemoveItem handles DELETE /api/revision/added/{name}.
func (h *RevisionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, revision.RemoveItem{Name: r.PathValue("name")})
}

// AddPhoto handles POST /api/revision/items/{code}/photos.
func (h *RevisionHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	img, ok := h.savePhoto(w, r, code)
	if !ok {
		return
	}

	h.current(r).Dispatch(revision.AddImage{Code: code, Image: img})
	jsonResponse(w, http.StatusCreated, photoResponse{Applied: true, Image: img})
}

// SetPhotos handles PUT /api/revision/items/{code}/photos. The body is the
// full list of image URIs; an empty list removes the item's photos. Stored
// photos left out of the list are deleted.
func (h *RevisionHandler) SetPhotos(w http.ResponseWriter, r *http.Request) {
	var images []model.Image
	if err := decodeJSON(r, &images); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	applied := h.dispatchDropped(r, revision.SetImages{Code: r.PathValue("code"), Images: images})
	jsonResponse(w, http.StatusOK, appliedResponse{Applied: applied})
}

// ReplacePhoto handles PUT /api/revision/items/{code}/photos/{index}.
func (h *RevisionHandler) ReplacePhoto(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid photo index")
		return
	}

	if !hasImage(h.current(r).Snapshot(), code, index) {
		jsonResponse(w, http.StatusOK, photoResponse{Applied: false})
		return
	}

	img, ok := h.savePhoto(w, r, code)
	if !ok {
		return
	}

	if !h.dispatchDropped(r, revision.UpdateImage{Code: code, Index: index, Image: img}) {
		// The photo list changed while the upload was processed.
		deletePhotos(r, h.DB, []model.Image{img})
		jsonResponse(w, http.StatusOK, photoResponse{Applied: false})
		return
	}
	jsonResponse(w, http.StatusOK, photoResponse{Applied: true, Image: img})
}

// RemovePhoto handles DELETE /api/revision/items/{code}/photos/{index}.
func (h *RevisionHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid photo index")
		return
	}

	applied := h.dispatchDropped(r, revision.RemoveImage{Code: code, Index: index})
	jsonResponse(w, http.StatusOK, appliedResponse{Applied: applied})
}

// Submit handles POST /api/revision/submit. The inspection is stored and the
// container reset for the next vehicle; the checklist is kept.
func (h *RevisionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	claims := GetClaims(r.Context())
	st := h.current(r)

	rev, err := store.SaveRevision(r.Context(), h.DB, claims.EmpCode, req.Cita, st.Snapshot())
	if err != nil {
		slog.Error("saving revision", "emp", claims.EmpCode, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save revision")
		return
	}
	st.Dispatch(revision.ResetAll{})

	slog.Info("revision submitted", "id", rev.ID, "emp", claims.EmpCode, "cita", req.Cita,
		"items", rev.ItemsTotal, "failed", rev.ItemsFailed, "photos", rev.Photos)
	jsonResponse(w, http.StatusCreated, rev)
}

// savePhoto reads the multipart "image" field, downscales it and stores it.
// It writes an error response and returns false on failure.
func (h *RevisionHandler) savePhoto(w http.ResponseWriter, r *http.Request, code string) (model.Image, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUpload+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return "", false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return "", false
	}
	defer file.Close()

	photo, err := imaging.Process(file, h.MaxDimension)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image must be a JPEG or PNG photo")
		return "", false
	}

	claims := GetClaims(r.Context())
	id, err := store.SavePhoto(r.Context(), h.DB, claims.EmpCode, code, photo)
	if err != nil {
		slog.Error("saving photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return "", false
	}

	slog.Info("photo stored", "id", id, "item", code,
		"uploaded", humanize.Bytes(uint64(header.Size)),
		"stored", humanize.Bytes(uint64(len(photo.Data))),
		"size", strconv.Itoa(photo.Width)+"x"+strconv.Itoa(photo.Height))
	return photoPath + id, true
}

// hasImage reports whether code has a photo at index.
func hasImage(s revision.State, code string, index int) bool {
	return index >= 0 && index < len(s.Attachment(code))
}
