package formz

// Validity is the aggregate validity of a Form.
type Validity int32

const (
	// ValidityUnknown indicates the aggregate has not been computed yet.
	ValidityUnknown Validity = iota

	// ValidityValid indicates every evaluated, enabled field is valid.
	ValidityValid

	// ValidityInvalid indicates at least one evaluated, enabled field failed.
	ValidityInvalid
)

func validityOf(valid bool) Validity {
	if valid {
		return ValidityValid
	}
	return ValidityInvalid
}

// String returns the string representation of the validity.
func (v Validity) String() string {
	switch v {
	case ValidityUnknown:
		return "unknown"
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// FieldState is the state of one field as tracked by its Form.
type FieldState int32

const (
	// FieldUnvalidated indicates the field has not been evaluated, either
	// because it has no value yet or because the form was reset.
	FieldUnvalidated FieldState = iota

	// FieldValid indicates the last evaluation produced no messages.
	FieldValid

	// FieldInvalid indicates the last evaluation produced messages.
	FieldInvalid

	// FieldDisabled indicates the field is disabled and excluded from the
	// aggregate.
	FieldDisabled
)

// String returns the string representation of the field state.
func (s FieldState) String() string {
	switch s {
	case FieldUnvalidated:
		return "unvalidated"
	case FieldValid:
		return "valid"
	case FieldInvalid:
		return "invalid"
	case FieldDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}
