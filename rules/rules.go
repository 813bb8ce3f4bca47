package rules

import (
	"cmp"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/zoobzio/formz"
)

// Validation types produced by this package.
const (
	TypeRequired  formz.ValidationType = "required"
	TypeMinLength formz.ValidationType = "min_length"
	TypeMaxLength formz.ValidationType = "max_length"
	TypeTooSmall  formz.ValidationType = "too_small"
	TypeTooLarge  formz.ValidationType = "too_large"
	TypePattern   formz.ValidationType = "pattern"
	TypeEmail     formz.ValidationType = "email"
	TypeEquals    formz.ValidationType = "equals"
)

func message(t formz.ValidationType, text string) formz.ValidationMessage {
	return formz.ValidationMessage{Message: text, Type: t}
}

// Required fails on strings that are empty after trimming spaces.
func Required(text string) formz.Validator[string] {
	return formz.NewValidator(message(TypeRequired, text), func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
}

// NotZero fails on the zero value of T.
func NotZero[T comparable](text string) formz.Validator[T] {
	return formz.NewValidator(message(TypeRequired, text), func(v T) bool {
		var zero T
		return v != zero
	})
}

// MinLength fails on strings with fewer than n runes.
func MinLength(n int, text string) formz.Validator[string] {
	return formz.NewValidator(message(TypeMinLength, text), func(s string) bool {
		return utf8.RuneCountInString(s) >= n
	})
}

// MaxLength fails on strings with more than n runes.
func MaxLength(n int, text string) formz.Validator[string] {
	return formz.NewValidator(message(TypeMaxLength, text), func(s string) bool {
		return utf8.RuneCountInString(s) <= n
	})
}

// Min fails on values below lo.
func Min[T cmp.Ordered](lo T, text string) formz.Validator[T] {
	return formz.NewValidator(message(TypeTooSmall, text), func(v T) bool {
		return cmp.Compare(v, lo) >= 0
	})
}

// Max fails on values above hi.
func Max[T cmp.Ordered](hi T, text string) formz.Validator[T] {
	return formz.NewValidator(message(TypeTooLarge, text), func(v T) bool {
		return cmp.Compare(v, hi) <= 0
	})
}

// Pattern fails on strings that do not match re. Empty strings pass; combine
// with Required to reject them.
func Pattern(re *regexp.Regexp, text string) formz.Validator[string] {
	return formz.NewValidator(message(TypePattern, text), func(s string) bool {
		return s == "" || re.MatchString(s)
	})
}

// Email fails on strings that are not e-mail addresses. Empty strings pass.
func Email(text string) formz.Validator[string] {
	return formz.NewValidator(message(TypeEmail, text), func(s string) bool {
		return s == "" || govalidator.IsEmail(s)
	})
}

// Equals fails when the value differs from the current value of other.
// Pair it with Field.TriggeredBy so the field re-validates when other
// changes.
func Equals[T comparable](other *formz.Value[T], text string) formz.Validator[T] {
	return formz.NewValidator(message(TypeEquals, text), func(v T) bool {
		return v == other.Get()
	})
}

// EqualsValue fails when the value differs from want.
func EqualsValue[T comparable](want T, text string) formz.Validator[T] {
	return formz.NewValidator(message(TypeEquals, text), func(v T) bool {
		return v == want
	})
}
