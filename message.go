package formz

// ValidationType identifies why a validation failed, e.g. "required".
// Several validators may share a type.
type ValidationType string

// ValidationMessage is the failure reason produced by a Validator.
type ValidationMessage struct {
	Message string         `json:"message" yaml:"message"`
	Type    ValidationType `json:"type" yaml:"type"`
}

// Messages is the ordered list of failures for one field.
// An empty list means the field is valid.
type Messages []ValidationMessage

// Valid reports whether there are no failures.
func (m Messages) Valid() bool {
	return len(m) == 0
}

// Equal reports whether both lists hold the same messages in the same order.
// A nil list equals an empty one.
func (m Messages) Equal(other Messages) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// Has reports whether any message carries the given type.
func (m Messages) Has(t ValidationType) bool {
	for _, msg := range m {
		if msg.Type == t {
			return true
		}
	}
	return false
}

// Types returns the validation types in order.
func (m Messages) Types() []ValidationType {
	if len(m) == 0 {
		return nil
	}
	types := make([]ValidationType, len(m))
	for i, msg := range m {
		types[i] = msg.Type
	}
	return types
}

// Strings returns the message texts in order.
func (m Messages) Strings() []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, len(m))
	for i, msg := range m {
		out[i] = msg.Message
	}
	return out
}

// FieldMessages pairs a field key with its failures.
type FieldMessages[K comparable] struct {
	Key      K
	Messages Messages
}

// FieldValue pairs a field key with its current value.
type FieldValue[K comparable] struct {
	Key   K
	Value any
}
