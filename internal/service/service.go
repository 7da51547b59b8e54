// Package service wraps the upstream service-center endpoints.
package service

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/erazemk/taller/internal/httpclient"
	"github.com/erazemk/taller/internal/model"
)

// Any is the upstream wildcard for numeric filters.
const Any = -1

// Login authenticates an employee against the upstream API. Errors from the
// client are returned unmodified so callers can inspect them with errors.As.
func Login(ctx context.Context, c httpclient.Getter, username, password string) (*model.UserProfile, error) {
	q := url.Values{}
	q.Set("pUsername", username)
	q.Set("pPassword", password)

	var profile model.UserProfile
	if err := c.Get(ctx, "/login?"+q.Encode(), &profile); err != nil {
		slog.Error("login failed", "user", username, "error", err)
		return nil, err
	}
	return &profile, nil
}

// GetCitas returns the raw appointments matching estado and sucursal. codigo
// is passed through to the upstream but currently ignored by it. Use Any for
// no filter.
func GetCitas(ctx context.Context, c httpclient.Getter, estado, codigo, sucursal int) ([]model.RawCita, error) {
	q := url.Values{}
	q.Set("pEstado", strconv.Itoa(estado))
	q.Set("pCodigo", strconv.Itoa(codigo))
	q.Set("pSucursal", strconv.Itoa(sucursal))

	var citas []model.RawCita
	if err := c.Get(ctx, "/citas?"+q.Encode(), &citas); err != nil {
		slog.Error("fetching citas failed", "error", err)
		return nil, err
	}
	return citas, nil
}

// GetDashboardData returns the dashboard counters for an employee.
func GetDashboardData(ctx context.Context, c httpclient.Getter, empCode string) ([]model.DashboardSummary, error) {
	q := url.Values{}
	q.Set("pEmpCode", empCode)

	var summary []model.DashboardSummary
	if err := c.Get(ctx, "/dashboard?"+q.Encode(), &summary); err != nil {
		slog.Error("fetching dashboard failed", "emp", empCode, "error", err)
		return nil, err
	}
	return summary, nil
}

// GetMaintenanceItems returns the inspection checklist grouped by category.
func GetMaintenanceItems(ctx context.Context, c httpclient.Getter) ([]model.Category, error) {
	var categories []model.Category
	if err := c.Get(ctx, "/articulos-mantenimiento", &categories); err != nil {
		slog.Error("fetching maintenance items failed", "error", err)
		return nil, err
	}
	return categories, nil
}
