// Package rules provides ready-made validators for formz fields.
//
// Each constructor takes the failure text shown to the user; the
// ValidationType is fixed per rule so callers can branch on it.
package rules
