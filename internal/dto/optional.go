package dto

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state JSON field for partial updates: absent keys
// leave the stored value unchanged, an explicit null clears it, and a
// value replaces it. This replaces the usual "magic sentinel" approach
// with something the type system can see.
type Optional[T any] struct {
	// Set is true when the key appeared in the payload at all.
	Set bool
	// Valid is true when a non-null value was supplied.
	Valid bool
	Value T
}

// UnmarshalJSON is only invoked for keys present in the payload, which
// is what makes the absent/null distinction work.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON round-trips the value; unset and null both encode as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns the value as a pointer, nil when the field was cleared.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
