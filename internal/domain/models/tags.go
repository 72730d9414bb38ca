package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Tags is a room's tag list, stored as a JSONB column.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}

	return json.Marshal(t)
}

func (t *Tags) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}
}
