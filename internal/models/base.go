// internal/models/base.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice is a JSONB column holding a list of strings, e.g. a tenant's
// allowed email domains.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan unmarshals a JSONB column into the slice.
func (s *StringSlice) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("StringSlice: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, s)
}
