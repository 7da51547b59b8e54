package model

import "time"

// StoredPhoto is a processed photo kept by the server.
type StoredPhoto struct {
	ID        string    `json:"id"`
	EmpCode   string    `json:"-"`
	ItemCode  string    `json:"item_code"`
	MIME      string    `json:"mime"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Revision is a submitted inspection. State holds the JSON snapshot of the
// inspection at submission time.
type Revision struct {
	ID          string    `json:"id"`
	EmpCode     string    `json:"emp_code"`
	CitaCode    int       `json:"cita_code,omitempty"`
	ItemsTotal  int       `json:"items_total"`
	ItemsFailed int       `json:"items_failed"`
	Photos      int       `json:"photos"`
	State       []byte    `json:"-"`
	SubmittedAt time.Time `json:"submitted_at"`
}
