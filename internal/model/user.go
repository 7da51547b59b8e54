package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserProfile is the employee profile returned by the upstream login.
type UserProfile struct {
	EmpCode    string `json:"EMP_CODE"`
	EmpNombre  string `json:"EMP_NOMBRE"`
	EmplCode   string `json:"EMPL_CODE"`
	EmplNombre string `json:"EMPL_NOMBRE"`
	Usuario    string `json:"USUARIO"`
}

// UnmarshalJSON accepts the codes as JSON strings or numbers.
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	var raw struct {
		EmpCode    code   `json:"EMP_CODE"`
		EmpNombre  string `json:"EMP_NOMBRE"`
		EmplCode   code   `json:"EMPL_CODE"`
		EmplNombre string `json:"EMPL_NOMBRE"`
		Usuario    string `json:"USUARIO"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = UserProfile{
		EmpCode:    string(raw.EmpCode),
		EmpNombre:  raw.EmpNombre,
		EmplCode:   string(raw.EmplCode),
		EmplNombre: raw.EmplNombre,
		Usuario:    raw.Usuario,
	}
	return nil
}

// code is an upstream identifier sent either as a string or as a number.
type code string

func (c *code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = code(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("code must be a string or number, got %s", data)
	}
	*c = code(n.String())
	return nil
}
