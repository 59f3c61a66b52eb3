package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when an identifier is missing, non-numeric, or not positive.
var ErrInvalidID = errors.New("invalid id")

// ID is the canonical identifier for users and creatures. Values arriving as
// strings (query parameters, path segments) or numbers (JSON, session claims)
// are converted once at the boundary.
type ID int64

// ParseID converts a decimal string into an ID.
func ParseID(raw string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	return ID(n), nil
}

// String renders the ID in base 10.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Valid reports whether the ID can refer to a stored row.
func (id ID) Valid() bool {
	return id > 0
}

// UnmarshalJSON accepts both 12 and "12".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidID
		}
		if strings.TrimSpace(s) == "" {
			*id = 0
			return nil
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidID
	}
	if n < 0 {
		return ErrInvalidID
	}
	*id = ID(n)
	return nil
}
