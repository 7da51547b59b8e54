// Package dashboard implements the appointment dashboard: counters, the
// appointment list and its filters.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/taller/internal/citas"
	"github.com/erazemk/taller/internal/httpclient"
	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/service"
)

// ErrSuperseded is returned by a fetch whose result was discarded because a
// newer fetch started before it finished.
var ErrSuperseded = errors.New("superseded by a newer request")

// Filters are the structured filters of the filter modal. Changing them
// re-fetches; the free-text query does not.
type Filters struct {
	Start    time.Time `json:"desde,omitzero"`
	End      time.Time `json:"hasta,omitzero"`
	Estado   string    `json:"estado,omitempty"`
	Sucursal int       `json:"sucursal,omitempty"`
}

// View is what the dashboard screen renders.
type View struct {
	Summary *model.DashboardSummary `json:"summary"`
	Groups  []citas.DayGroup        `json:"groups"`
	Total   int                     `json:"total"`
	Loading bool                    `json:"loading"`
	Query   string                  `json:"query"`
	Filters Filters                 `json:"filters"`
}

// Controller holds the dashboard state of one employee.
type Controller struct {
	client  httpclient.Getter
	empCode string

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	loading  bool
	summary  *model.DashboardSummary
	all      []model.Appointment
	filtered []model.Appointment
	query    string
	filters  Filters
}

// New returns a controller for empCode. Nothing is fetched until Refresh.
func New(client httpclient.Getter, empCode string) *Controller {
	return &Controller{client: client, empCode: empCode}
}

// begin starts a new fetch generation, cancelling the one in flight. It also
// returns the filters current at the start of the generation.
func (c *Controller) begin(ctx context.Context) (context.Context, uint64, Filters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.gen++
	c.loading = true
	return ctx, c.gen, c.filters
}

// finish ends generation gen. It reports false, and leaves the loading flag
// alone, when a newer generation has started.
func (c *Controller) finish(gen uint64) bool {
	if gen != c.gen {
		return false
	}
	c.loading = false
	c.cancel()
	c.cancel = nil
	return true
}

// Refresh fetches the counters and the appointment list, applying the current
// filters and query. On failure the previous data is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	ctx, gen, f := c.begin(ctx)

	var summary []model.DashboardSummary
	var raw []model.RawCita
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = service.GetDashboardData(gctx, c.client, c.empCode)
		return err
	})
	g.Go(func() error {
		var err error
		raw, err = service.GetCitas(gctx, c.client, citas.EstadoParam(f.Estado), service.Any, sucursalParam(f.Sucursal))
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(gen) {
		return ErrSuperseded
	}
	if err != nil {
		slog.Error("dashboard refresh failed", "emp", c.empCode, "error", err)
		return fmt.Errorf("refreshing dashboard: %w", err)
	}

	if len(summary) > 0 {
		s := summary[0]
		c.summary = &s
	}
	c.all = citas.FilterByDate(citas.Process(raw), f.Start, f.End)
	c.filtered = citas.Search(c.all, c.query)
	return nil
}

// ApplyFilters re-fetches the appointments with f and filters them by date.
// The filters are kept only when the fetch succeeds.
func (c *Controller) ApplyFilters(ctx context.Context, f Filters) error {
	ctx, gen, _ := c.begin(ctx)

	raw, err := service.GetCitas(ctx, c.client, citas.EstadoParam(f.Estado), service.Any, sucursalParam(f.Sucursal))

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(gen) {
		return ErrSuperseded
	}
	if err != nil {
		slog.Error("applying dashboard filters failed", "emp", c.empCode, "error", err)
		return fmt.Errorf("applying filters: %w", err)
	}

	c.filters = f
	c.all = citas.FilterByDate(citas.Process(raw), f.Start, f.End)
	c.filtered = citas.Search(c.all, c.query)
	return nil
}

// Search filters the last fetched appointments by code. It never fetches.
func (c *Controller) Search(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = query
	c.filtered = citas.Search(c.all, query)
}

// View returns the current dashboard view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		Groups:  citas.GroupByDate(c.filtered),
		Total:   len(c.filtered),
		Loading: c.loading,
		Query:   c.query,
		Filters: c.filters,
	}
	if c.summary != nil {
		s := *c.summary
		v.Summary = &s
	}
	if v.Groups == nil {
		v.Groups = []citas.DayGroup{}
	}
	return v
}

func sucursalParam(sucursal int) int {
	if sucursal <= 0 {
		return service.Any
	}
	return sucursal
}

// Registry holds one Controller per employee.
type Registry struct {
	client httpclient.Getter

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry returns a registry whose controllers use client.
func NewRegistry(client httpclient.Getter) *Registry {
	return &Registry{client: client, controllers: make(map[string]*Controller)}
}

// Get returns the controller for empCode, creating it on first use.
func (r *Registry) Get(empCode string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[empCode]
	if !ok {
		c = New(r.client, empCode)
		r.controllers[empCode] = c
	}
	return c
}

// Drop forgets the controller for empCode.
func (r *Registry) Drop(empCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, empCode)
}
