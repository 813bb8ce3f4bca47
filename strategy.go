package formz

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationStrategy decides when validation results become visible and when
// errors are cleared. The Form always keeps its cached results current; the
// strategy only gates side effects (error cells and callbacks).
type ValidationStrategy struct {
	// OnChange validates a field when its input changes.
	OnChange bool `yaml:"on_change" json:"on_change"`
	// BeforeSubmit allows validation side effects before the first submit.
	BeforeSubmit bool `yaml:"before_submit" json:"before_submit"`
	// OnSubmit re-evaluates every field when the form is submitted.
	OnSubmit bool `yaml:"on_submit" json:"on_submit"`
	// AfterSubmit allows validation side effects once a submit happened.
	AfterSubmit bool `yaml:"after_submit" json:"after_submit"`
	// OnEnable validates a field when it becomes enabled.
	OnEnable bool `yaml:"on_enable" json:"on_enable"`
	// ClearErrorsOnDisable clears a field's errors when it becomes disabled.
	ClearErrorsOnDisable bool `yaml:"clear_errors_on_disable" json:"clear_errors_on_disable"`
	// OnTrigger validates a field when one of its triggers fires.
	OnTrigger bool `yaml:"on_trigger" json:"on_trigger"`
	// ClearErrorOnChange clears a field's errors when its input changes.
	ClearErrorOnChange bool `yaml:"clear_error_on_change" json:"clear_error_on_change"`
}

// Canonical strategies.
var (
	// StrategyAllTime validates eagerly at every opportunity, including
	// while the form is being built.
	StrategyAllTime = ValidationStrategy{
		OnChange:             true,
		BeforeSubmit:         true,
		OnSubmit:             true,
		AfterSubmit:          true,
		OnEnable:             true,
		ClearErrorsOnDisable: true,
		OnTrigger:            true,
	}

	// StrategyAfterSubmit stays silent until the first submit, then behaves
	// like StrategyAllTime. Every submit re-emits the state of all fields.
	StrategyAfterSubmit = ValidationStrategy{
		OnChange:             true,
		OnSubmit:             true,
		AfterSubmit:          true,
		OnEnable:             true,
		ClearErrorsOnDisable: true,
		OnTrigger:            true,
	}

	// StrategyOnSubmit shows results only when the form is submitted or a
	// trigger fires after the first submit.
	StrategyOnSubmit = ValidationStrategy{
		OnSubmit:    true,
		AfterSubmit: true,
		OnTrigger:   true,
	}
)

// DefaultStrategy is used by builders that do not set one.
var DefaultStrategy = StrategyAfterSubmit

// Preset names accepted by ParseStrategy.
const (
	StrategyNameAllTime     = "all_time"
	StrategyNameAfterSubmit = "after_submit"
	StrategyNameOnSubmit    = "on_submit"
	strategyNameCustom      = "custom"
)

// ParseStrategy returns the preset with the given name. Matching ignores case
// and accepts dashes in place of underscores.
func ParseStrategy(name string) (ValidationStrategy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_") {
	case StrategyNameAllTime:
		return StrategyAllTime, nil
	case StrategyNameAfterSubmit:
		return StrategyAfterSubmit, nil
	case StrategyNameOnSubmit:
		return StrategyOnSubmit, nil
	default:
		return ValidationStrategy{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// String returns the preset name or "custom".
func (s ValidationStrategy) String() string {
	switch s {
	case StrategyAllTime:
		return StrategyNameAllTime
	case StrategyAfterSubmit:
		return StrategyNameAfterSubmit
	case StrategyOnSubmit:
		return StrategyNameOnSubmit
	default:
		return strategyNameCustom
	}
}

// UnmarshalYAML accepts either a preset name or a mapping of flags.
func (s *ValidationStrategy) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		preset, err := ParseStrategy(node.Value)
		if err != nil {
			return err
		}
		*s = preset
		return nil
	}
	type flags ValidationStrategy
	var f flags
	if err := node.Decode(&f); err != nil {
		return fmt.Errorf("decode strategy: %w", err)
	}
	*s = ValidationStrategy(f)
	return nil
}

// allows reports whether validation side effects may happen in the given
// submission state.
func (s ValidationStrategy) allows(submitted bool) bool {
	if submitted {
		return s.AfterSubmit
	}
	return s.BeforeSubmit
}

// resyncsOnSubmit reports whether a submit re-emits the state of every field
// rather than relying on the diffed notifications of earlier changes.
func (s ValidationStrategy) resyncsOnSubmit() bool {
	return s.OnSubmit && !s.BeforeSubmit
}
