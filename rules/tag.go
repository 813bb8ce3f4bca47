package rules

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/formz"
)

// validate is the shared validator instance.
var validate = validator.New()

// Tag validates with a go-playground validator tag such as "required",
// "min=3" or "email". The validation type is the tag name without its
// parameter. Tags that cannot be evaluated for T fail.
func Tag[T any](tag, text string) formz.Validator[T] {
	name, _, _ := strings.Cut(tag, "=")
	return formz.NewValidator(message(formz.ValidationType(name), text), func(v T) bool {
		return tagValid(v, tag)
	})
}

func tagValid(v any, tag string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return validate.Var(v, tag) == nil
}

// Ozzo adapts an ozzo-validation rule. The rule's own error text is
// discarded in favor of msg.
func Ozzo[T any](rule validation.Rule, msg formz.ValidationMessage) formz.Validator[T] {
	return formz.NewValidator(msg, func(v T) bool {
		return rule.Validate(v) == nil
	})
}
