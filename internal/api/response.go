package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/taller/internal/dashboard"
	"github.com/erazemk/taller/internal/httpclient"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// appliedResponse reports whether a revision action matched anything.
type appliedResponse struct {
	Applied bool `json:"applied"`
}

// upstreamError maps an error from the service-center API to a response.
func upstreamError(w http.ResponseWriter, err error) {
	var httpErr *httpclient.HTTPError
	var netErr *httpclient.NetworkError
	switch {
	case errors.Is(err, dashboard.ErrSuperseded):
		jsonError(w, http.StatusConflict, "superseded by a newer request")
	case errors.As(err, &httpErr):
		jsonError(w, http.StatusBadGateway, "upstream returned an error")
	case errors.As(err, &netErr):
		jsonError(w, http.StatusBadGateway, "upstream unreachable")
	default:
		jsonError(w, http.StatusBadGateway, "upstream request failed")
	}
}
