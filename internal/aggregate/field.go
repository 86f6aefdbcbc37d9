package aggregate

import "encoding/json"

// Field is a view value sourced from a single partition. An unavailable
// field has no value, so it cannot be confused with a confirmed zero.
type Field[T any] struct {
	value     T
	available bool
	reason    string
}

// Present wraps a value that was computed from retrieved data.
func Present[T any](v T) Field[T] {
	return Field[T]{value: v, available: true}
}

// Missing marks a field whose source could not be read.
func Missing[T any](reason string) Field[T] {
	return Field[T]{reason: reason}
}

// Get returns the value and whether it is available.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.available
}

// Available reports whether the field carries a value.
func (f Field[T]) Available() bool {
	return f.available
}

// Reason explains why the field is unavailable.
func (f Field[T]) Reason() string {
	return f.reason
}

type fieldJSON[T any] struct {
	Available bool   `json:"available"`
	Value     *T     `json:"value,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	out := fieldJSON[T]{Available: f.available, Reason: f.reason}
	if f.available {
		v := f.value
		out.Value = &v
	}
	return json.Marshal(out)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	var in fieldJSON[T]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*f = Field[T]{available: in.Available, reason: in.Reason}
	if in.Available && in.Value != nil {
		f.value = *in.Value
	}
	return nil
}

func mapField[A, B any](f Field[A], fn func(A) B) Field[B] {
	if v, ok := f.Get(); ok {
		return Present(fn(v))
	}
	return Missing[B](f.reason)
}
