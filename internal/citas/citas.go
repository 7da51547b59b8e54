// Package citas turns upstream appointment rows into the shape the screens
// display, and holds the local filtering used by the dashboard.
package citas

import (
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/service"
)

// Estado filter values as offered by the filter modal.
const (
	EstadoActivo     = "Activo"
	EstadoFinalizado = "Finalizado"
)

// Process converts raw rows to appointments, preserving order.
func Process(raw []model.RawCita) []model.Appointment {
	out := make([]model.Appointment, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.Appointment{
			Cita: model.Cita{
				Code:          r.CitaCode,
				FechaReserva:  r.FechaReserva,
				Estado:        r.Estado,
				Observaciones: r.Observaciones,
				SucCode:       r.SucCode,
				SucNombre:     r.SucNombre,
			},
			Cliente: model.Cliente{
				Code:      r.CliCode,
				Nombre:    r.CliNombre,
				Apellido:  r.CliApellido,
				Telefono:  r.CliTelefono,
				Email:     r.CliEmail,
				Documento: r.CliDocumento,
			},
			Vehiculo: model.Vehiculo{
				Code:   r.VehCode,
				Placa:  r.VehPlaca,
				Marca:  r.VehMarca,
				Modelo: r.VehModelo,
				Anio:   r.VehAnio,
				Color:  r.VehColor,
			},
		})
	}
	return out
}

// EstadoParam maps the filter label to the upstream estado parameter.
func EstadoParam(estado string) int {
	switch estado {
	case EstadoActivo:
		return model.CitaActiva
	case EstadoFinalizado:
		return model.CitaFinalizada
	default:
		return service.Any
	}
}

// timestampLayouts are the reservation formats seen from the upstream.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseFecha parses a reservation timestamp. Timestamps without a zone are
// taken as UTC.
func ParseFecha(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterByDate keeps the appointments reserved within [start, end]. A zero
// bound is open. Appointments with an unparseable date are dropped when any
// bound is set.
func FilterByDate(apps []model.Appointment, start, end time.Time) []model.Appointment {
	if start.IsZero() && end.IsZero() {
		return apps
	}
	out := make([]model.Appointment, 0, len(apps))
	for _, a := range apps {
		t, ok := ParseFecha(a.Cita.FechaReserva)
		if !ok {
			continue
		}
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Search keeps the appointments whose code contains query. An empty query
// keeps everything.
func Search(apps []model.Appointment, query string) []model.Appointment {
	query = strings.TrimSpace(query)
	if query == "" {
		return apps
	}
	out := make([]model.Appointment, 0, len(apps))
	for _, a := range apps {
		if strings.Contains(strconv.Itoa(a.Cita.Code), query) {
			out = append(out, a)
		}
	}
	return out
}

// DayGroup is the appointments of one calendar date.
type DayGroup struct {
	Fecha string              `json:"fecha"`
	Citas []model.Appointment `json:"citas"`
}

// GroupByDate groups appointments by the date part of their reservation
// timestamp. Groups keep the order in which their first appointment appears.
func GroupByDate(apps []model.Appointment) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)
	for _, a := range apps {
		fecha, _, _ := strings.Cut(a.Cita.FechaReserva, "T")
		i, ok := index[fecha]
		if !ok {
			i = len(groups)
			index[fecha] = i
			groups = append(groups, DayGroup{Fecha: fecha})
		}
		groups[i].Citas = append(groups[i].Citas, a)
	}
	return groups
}
