package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque identifier issued by the ordering backend. The backend
// may use strings or numbers; ID remembers which one it received so it is
// echoed back in the same JSON form.
type ID struct {
	value   string
	numeric bool
}

func StringID(s string) ID {
	return ID{value: s}
}

func NumericID(n int64) ID {
	return ID{value: strconv.FormatInt(n, 10), numeric: true}
}

// ParseNumericID accepts any JSON number literal, including ones that do
// not fit an int64, and keeps its exact text.
func ParseNumericID(s string) (ID, error) {
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) || !json.Valid([]byte(s)) {
		return ID{}, fmt.Errorf("invalid numeric id %q", s)
	}
	return ID{value: s, numeric: true}, nil
}

func (id ID) String() string {
	return id.value
}

func (id ID) IsZero() bool {
	return id.value == ""
}

func (id ID) IsNumeric() bool {
	return id.numeric
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID{value: n.String(), numeric: true}
	return nil
}

