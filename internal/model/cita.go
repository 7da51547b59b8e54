package model

// RawCita is an appointment row as returned by the upstream citas endpoint.
type RawCita struct {
	CitaCode      int    `json:"CITCLIE_CODE"`
	FechaReserva  string `json:"CITCLIE_FECHA_RESERVA"`
	Estado        int    `json:"CITCLIE_ESTADO"`
	Observaciones string `json:"CITCLIE_OBSERVACIONES"`
	SucCode       int    `json:"SUC_CODE"`
	SucNombre     string `json:"SUC_NOMBRE"`

	CliCode      int    `json:"CLI_CODE"`
	CliNombre    string `json:"CLI_NOMBRE"`
	CliApellido  string `json:"CLI_APELLIDO"`
	CliTelefono  string `json:"CLI_TELEFONO"`
	CliEmail     string `json:"CLI_EMAIL"`
	CliDocumento string `json:"CLI_DOCUMENTO"`

	VehCode   int    `json:"VEH_CODE"`
	VehPlaca  string `json:"VEH_PLACA"`
	VehMarca  string `json:"VEH_MARCA"`
	VehModelo string `json:"VEH_MODELO"`
	VehAnio   int    `json:"VEH_ANIO"`
	VehColor  string `json:"VEH_COLOR"`
}

// Appointment is the display shape of an appointment.
type Appointment struct {
	Cita     Cita     `json:"CITA"`
	Cliente  Cliente  `json:"CLIENTE"`
	Vehiculo Vehiculo `json:"VEHICULO"`
}

// Cita holds the appointment fields of an Appointment.
type Cita struct {
	Code          int    `json:"CITCLIE_CODE"`
	FechaReserva  string `json:"CITCLIE_FECHA_RESERVA"`
	Estado        int    `json:"CITCLIE_ESTADO"`
	Observaciones string `json:"CITCLIE_OBSERVACIONES,omitempty"`
	SucCode       int    `json:"SUC_CODE"`
	SucNombre     string `json:"SUC_NOMBRE,omitempty"`
}

// Cliente is the customer who booked the appointment.
type Cliente struct {
	Code      int    `json:"CLI_CODE"`
	Nombre    string `json:"CLI_NOMBRE"`
	Apellido  string `json:"CLI_APELLIDO,omitempty"`
	Telefono  string `json:"CLI_TELEFONO,omitempty"`
	Email     string `json:"CLI_EMAIL,omitempty"`
	Documento string `json:"CLI_DOCUMENTO,omitempty"`
}

// Vehiculo is the vehicle brought to the appointment.
type Vehiculo struct {
	Code   int    `json:"VEH_CODE"`
	Placa  string `json:"VEH_PLACA"`
	Marca  string `json:"VEH_MARCA,omitempty"`
	Modelo string `json:"VEH_MODELO,omitempty"`
	Anio   int    `json:"VEH_ANIO,omitempty"`
	Color  string `json:"VEH_COLOR,omitempty"`
}

// Appointment states as stored upstream.
const (
	CitaFinalizada = 0
	CitaActiva     = 1
)

// DashboardSummary holds the vehicle counters shown on the dashboard.
type DashboardSummary struct {
	Pendientes int `json:"PENDIENTES"`
	Recibidos  int `json:"RECIBIDOS"`
	Entregados int `json:"ENTREGADOS"`
}
