package formz

// Validator checks one value and describes the failure when the check fails.
// Implementations must be pure with respect to the value they are given;
// cross-field validators read other cells and are re-run through triggers.
type Validator[T any] interface {
	IsValid(value T) bool
	ValidationMessage() ValidationMessage
}

// Formatter normalizes a value before it is written to a field.
type Formatter[T any] interface {
	Format(value T) T
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc[T any] func(T) T

// Format calls f(value).
func (f FormatterFunc[T]) Format(value T) T {
	return f(value)
}

type validatorFunc[T any] struct {
	check   func(T) bool
	message ValidationMessage
}

func (v validatorFunc[T]) IsValid(value T) bool {
	return v.check(value)
}

func (v validatorFunc[T]) ValidationMessage() ValidationMessage {
	return v.message
}

// NewValidator builds a Validator from a predicate and its failure message.
//
//	notBlank := formz.NewValidator(
//	    formz.ValidationMessage{Message: "name is required", Type: "required"},
//	    func(s string) bool { return strings.TrimSpace(s) != "" },
//	)
func NewValidator[T any](message ValidationMessage, check func(T) bool) Validator[T] {
	return validatorFunc[T]{check: check, message: message}
}

// Check runs every validator against value in order and returns one message
// per failing validator. A nil result means value is valid.
func Check[T any](value T, validators []Validator[T]) Messages {
	var out Messages
	for _, v := range validators {
		if !v.IsValid(value) {
			out = append(out, v.ValidationMessage())
		}
	}
	return out
}
