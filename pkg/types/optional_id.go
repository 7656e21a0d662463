package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// OptionalID distinguishes an omitted JSON id from an explicit null.
// Set is true whenever the key appeared; ID is nil for null.
type OptionalID struct {
	Set bool
	ID  *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	o.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		o.ID = nil
		return nil
	}

	var parsed uuid.UUID
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	o.ID = &parsed
	return nil
}

// Clear reports whether the caller explicitly sent null.
func (o OptionalID) Clear() bool {
	return o.Set && o.ID == nil
}
