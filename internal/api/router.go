package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/taller/internal/dashboard"
	"github.com/erazemk/taller/internal/httpclient"
	"github.com/erazemk/taller/internal/imaging"
	"github.com/erazemk/taller/internal/revision"
)

// Deps are the dependencies shared by the API handlers.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Upstream  httpclient.Getter
	// MaxPhotoDimension bounds stored photos; zero means imaging.MaxDimension.
	MaxPhotoDimension int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	if deps.MaxPhotoDimension <= 0 {
		deps.MaxPhotoDimension = imaging.MaxDimension
	}

	revisions := revision.NewRegistry()
	dashboards := dashboard.NewRegistry(deps.Upstream)

	authHandler := &AuthHandler{
		DB:         deps.DB,
		JWTSecret:  deps.JWTSecret,
		Upstream:   deps.Upstream,
		Revisions:  revisions,
		Dashboards: dashboards,
	}
	dashboardHandler := &DashboardHandler{Dashboards: dashboards}
	revisionHandler := &RevisionHandler{
		DB:           deps.DB,
		Upstream:     deps.Upstream,
		Revisions:    revisions,
		MaxDimension: deps.MaxPhotoDimension,
	}
	photosHandler := &PhotosHandler{DB: deps.DB}
	historyHandler := &HistoryHandler{DB: deps.DB}

	authMW := AuthMiddleware(deps.JWTSecret, deps.DB)
	protect := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))
	mux.Handle("GET /api/auth/me", protect(authHandler.Me))

	// Dashboard.
	mux.Handle("GET /api/dashboard", protect(dashboardHandler.View))
	mux.Handle("POST /api/dashboard/refresh", protect(dashboardHandler.Refresh))
	mux.Handle("POST /api/dashboard/filters", protect(dashboardHandler.ApplyFilters))
	mux.Handle("GET /api/dashboard/search", protect(dashboardHandler.Search))

	// Inspection in progress.
	mux.Handle("GET /api/revision", protect(revisionHandler.Get))
	mux.Handle("PUT /api/revision/categories", protect(revisionHandler.SetCategories))
	mux.Handle("POST /api/revision/categories/load", protect(revisionHandler.LoadCategories))
	mux.Handle("POST /api/revision/reset", protect(revisionHandler.Reset))
	mux.Handle("POST /api/revision/items/{code}/activate", protect(revisionHandler.Activate))
	mux.Handle("POST /api/revision/items/{code}/deactivate", protect(revisionHandler.Deactivate))
	mux.Handle("POST /api/revision/added", protect(revisionHandler.AddItem))
	mux.Handle("DELETE /api/revision/added/{name}", protect(revisionHandler.RemoveItem))
	mux.Handle("POST /api/revision/items/{code}/photos", protect(revisionHandler.AddPhoto))
	mux.Handle("PUT /api/revision/items/{code}/photos", protect(revisionHandler.SetPhotos))
	mux.Handle("PUT /api/revision/items/{code}/photos/{index}", protect(revisionHandler.ReplacePhoto))
	mux.Handle("DELETE /api/revision/items/{code}/photos/{index}", protect(revisionHandler.RemovePhoto))
	mux.Handle("POST /api/revision/submit", protect(revisionHandler.Submit))

	// Stored photos and submitted inspections.
	mux.Handle("GET /api/photos/{id}", protect(photosHandler.Get))
	mux.Handle("GET /api/revisions", protect(historyHandler.List))
	mux.Handle("GET /api/revisions/{id}", protect(historyHandler.Get))

	return mux
}
