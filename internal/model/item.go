package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category groups checklist items by vehicle subsystem (brakes, suspension...).
type Category struct {
	Name  string `json:"CATEGORIA"`
	Items []Item `json:"Articulos"`
}

// Item is a single inspection checklist entry. Items added by the inspector
// during a revision have an empty Code and empty timestamps.
type Item struct {
	Code        string    `json:"ART_CODE"`
	Name        string    `json:"ART_NOMBRE"`
	Description string    `json:"ART_DESCRIPCION"`
	CreatedAt   string    `json:"ART_CREATEDATE"`
	UpdatedAt   string    `json:"ART_UPDATEDATE"`
	State       ItemState `json:"ESTADO"`
}

// ItemState is the tri-state pass/fail status of a checklist item.
type ItemState int

// Item states. The zero value is unset.
const (
	StateUnset ItemState = iota
	StateActive
	StateInactive
)

// StateOf converts a boolean to the matching set state.
func StateOf(active bool) ItemState {
	if active {
		return StateActive
	}
	return StateInactive
}

func (s ItemState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	default:
		return "unset"
	}
}

// MarshalJSON encodes the state the way the upstream API does: "" when unset,
// otherwise a boolean.
func (s ItemState) MarshalJSON() ([]byte, error) {
	switch s {
	case StateActive:
		return []byte("true"), nil
	case StateInactive:
		return []byte("false"), nil
	default:
		return []byte(`""`), nil
	}
}

// UnmarshalJSON accepts "", null, true and false.
func (s *ItemState) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case `""`, "null":
		*s = StateUnset
	case "true":
		*s = StateActive
	case "false":
		*s = StateInactive
	default:
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("invalid item state %s", data)
		}
		return fmt.Errorf("invalid item state %q", str)
	}
	return nil
}
