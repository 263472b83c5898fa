package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StringList normalizes the role_codes JSON column to a typed string slice.
// Legacy rows carry either a JSON array or a bare string; both scan into a
// plain []string, and writes always produce a JSON array.
type StringList []string

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	if raw[0] == '[' {
		var values []string
		if err := json.Unmarshal(raw, &values); err != nil {
			return fmt.Errorf("scan string list: %w", err)
		}
		*l = values
		return nil
	}
	// Bare string rows: either a JSON-quoted string or the raw value itself.
	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		single = string(raw)
	}
	if single == "" {
		*l = nil
		return nil
	}
	*l = StringList{single}
	return nil
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("encode string list: %w", err)
	}
	return data, nil
}

// RoleGroup names a set of role-code patterns authorized at one or more stages.
type RoleGroup struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Description  *string    `db:"description" json:"description,omitempty"`
	RoleCodes    StringList `db:"role_codes" json:"role_codes"`
	DepartmentID *string    `db:"department_id" json:"department_id,omitempty"`
	ZoneID       *string    `db:"zone_id" json:"zone_id,omitempty"`
	DistrictID   *string    `db:"district_id" json:"district_id,omitempty"`
	TownID       *string    `db:"town_id" json:"town_id,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
