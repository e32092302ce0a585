package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray is a string set stored as a jsonb column.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	v, err := json.Marshal(a)
	return string(v), err
}

func (a *StringArray) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}
}

func (StringArray) GormDataType() string {
	return "jsonb"
}
