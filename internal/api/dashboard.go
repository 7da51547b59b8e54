package api

import (
	"net/http"
	"time"

	"github.com/erazemk/taller/internal/dashboard"
)

// DashboardHandler handles the appointment dashboard endpoints.
type DashboardHandler struct {
	Dashboards *dashboard.Registry
}

type filtersRequest struct {
	Desde    string `json:"desde"`
	Hasta    string `json:"hasta"`
	Estado   string `json:"estado"`
	Sucursal int    `json:"sucursal"`
}

// View handles GET /api/dashboard. Nothing is fetched.
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	c := h.Dashboards.Get(GetClaims(r.Context()).EmpCode)
	jsonResponse(w, http.StatusOK, c.View())
}

// Refresh handles POST /api/dashboard/refresh.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c := h.Dashboards.Get(GetClaims(r.Context()).EmpCode)
	if err := c.Refresh(r.Context()); err != nil {
		upstreamError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, c.View())
}

// ApplyFilters handles POST /api/dashboard/filters. Dates are YYYY-MM-DD;
// hasta includes the whole day.
func (h *DashboardHandler) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f := dashboard.Filters{Estado: req.Estado, Sucursal: req.Sucursal}
	var err error
	if f.Start, err = parseDay(req.Desde); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid desde date")
		return
	}
	if f.End, err = parseDay(req.Hasta); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid hasta date")
		return
	}
	if !f.End.IsZero() {
		f.End = f.End.Add(24*time.Hour - time.Nanosecond)
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		jsonError(w, http.StatusBadRequest, "hasta is before desde")
		return
	}

	c := h.Dashboards.Get(GetClaims(r.Context()).EmpCode)
	if err := c.ApplyFilters(r.Context(), f); err != nil {
		upstreamError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, c.View())
}

// Search handles GET /api/dashboard/search?q=.
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	c := h.Dashboards.Get(GetClaims(r.Context()).EmpCode)
	c.Search(r.URL.Query().Get("q"))
	jsonResponse(w, http.StatusOK, c.View())
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
