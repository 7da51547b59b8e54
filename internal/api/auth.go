package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/taller/internal/auth"
	"github.com/erazemk/taller/internal/dashboard"
	"github.com/erazemk/taller/internal/httpclient"
	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/revision"
	"github.com/erazemk/taller/internal/service"
	"github.com/erazemk/taller/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB         *sql.DB
	JWTSecret  string
	Upstream   httpclient.Getter
	Revisions  *revision.Registry
	Dashboards *dashboard.Registry
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string             `json:"token"`
	Profile *model.UserProfile `json:"profile"`
}

// Login handles POST /api/auth/login. Credentials are checked by the upstream
// API; on success a session token is issued for the returned profile.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	profile, err := service.Login(r.Context(), h.Upstream, req.Username, req.Password)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) &&
			(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
			jsonError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		upstreamError(w, err)
		return
	}
	if profile.EmpCode == "" {
		slog.Warn("login returned no employee", "username", req.Username)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, req.Username, profile)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "user", req.Username, "emp", profile.EmpCode)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, Profile: profile})
}

// Logout handles POST /api/auth/logout. The session token is revoked and the
// employee's dashboard and inspection in progress are discarded, including the
// photos attached to it. Photos of submitted inspections are kept.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires); err != nil {
		slog.Error("revoking token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	if st := h.Revisions.Drop(claims.EmpCode); st != nil {
		_, dropped := st.DispatchDropped(revision.ResetAll{})
		deletePhotos(r, h.DB, dropped)
	}
	h.Dashboards.Drop(claims.EmpCode)

	slog.Info("user logged out", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	jsonResponse(w, http.StatusOK, model.UserProfile{
		EmpCode:    claims.EmpCode,
		EmpNombre:  claims.EmpNombre,
		EmplCode:   claims.EmplCode,
		EmplNombre: claims.EmplNombre,
		Usuario:    claims.Username,
	})
}
