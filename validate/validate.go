// Package validate provides value validators for preference settings.
//
// Validators are composable predicates over value cells. Setting assignment
// runs the full set and reports every violated rule at once, so an editing
// surface can show the complete rejection reason in one pass.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/prefdeck/prefdeck/value"
)

// Validator checks a candidate value against one rule.
type Validator interface {
	// Validate returns nil if the candidate passes, or an error describing
	// the violated rule.
	Validate(v *value.Value) error

	// Description returns a short human-readable statement of the rule.
	Description() string
}

// ValidationError reports the rules violated by a rejected candidate value.
// The target value is never mutated when a ValidationError is returned.
type ValidationError struct {
	// Breadcrumb is the path of the setting that rejected the value.
	// Empty when validation ran outside a setting context.
	Breadcrumb string

	// Value is the rejected candidate.
	Value *value.Value

	// Violations lists one message per violated rule.
	Violations []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	joined := strings.Join(e.Violations, "; ")
	if e.Breadcrumb == "" {
		return fmt.Sprintf("invalid value %v: %s", e.Value, joined)
	}
	return fmt.Sprintf("%s: invalid value %v: %s", e.Breadcrumb, e.Value, joined)
}

// Apply runs every validator against the candidate and collects all
// violations. Returns nil when the candidate passes every rule.
func Apply(v *value.Value, validators []Validator) *ValidationError {
	var violations []string
	for _, val := range validators {
		if err := val.Validate(v); err != nil {
			violations = append(violations, err.Error())
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Value: v.Clone(), Violations: violations}
}

type funcValidator struct {
	desc string
	fn   func(v *value.Value) error
}

func (f *funcValidator) Validate(v *value.Value) error {
	return f.fn(v)
}

func (f *funcValidator) Description() string {
	return f.desc
}

// Custom builds a validator from a description and a check function.
func Custom(description string, fn func(v *value.Value) error) Validator {
	return &funcValidator{desc: description, fn: fn}
}

// Min requires a numeric value to be at least min.
func Min(min float64) Validator {
	desc := fmt.Sprintf(">= %v", min)
	return Custom(desc, func(v *value.Value) error {
		n, err := numeric(v)
		if err != nil {
			return err
		}
		if n < min {
			return fmt.Errorf("value %v is less than minimum %v", v, min)
		}
		return nil
	})
}

// Max requires a numeric value to be at most max.
func Max(max float64) Validator {
	desc := fmt.Sprintf("<= %v", max)
	return Custom(desc, func(v *value.Value) error {
		n, err := numeric(v)
		if err != nil {
			return err
		}
		if n > max {
			return fmt.Errorf("value %v is greater than maximum %v", v, max)
		}
		return nil
	})
}

// Between requires a numeric value to lie in [min, max].
func Between(min, max float64) Validator {
	desc := fmt.Sprintf("between %v and %v", min, max)
	return Custom(desc, func(v *value.Value) error {
		n, err := numeric(v)
		if err != nil {
			return err
		}
		if n < min || n > max {
			return fmt.Errorf("value %v is out of range [%v, %v]", v, min, max)
		}
		return nil
	})
}

// NonEmpty requires a text value to contain at least one non-space character,
// or a list value to contain at least one element.
func NonEmpty() Validator {
	return Custom("non-empty", func(v *value.Value) error {
		if v.Kind().IsList() {
			if len(v.Elements()) == 0 {
				return fmt.Errorf("at least one element required")
			}
			return nil
		}
		if strings.TrimSpace(v.Text()) == "" {
			return fmt.Errorf("value must not be empty")
		}
		return nil
	})
}

// Pattern requires a text value to match the given regular expression.
// The expression is compiled eagerly; an invalid expression panics, since
// it is a programming error in the integrator's configuration.
func Pattern(expr string) Validator {
	re := regexp.MustCompile(expr)
	desc := fmt.Sprintf("matches %s", expr)
	return Custom(desc, func(v *value.Value) error {
		if !re.MatchString(v.Text()) {
			return fmt.Errorf("value %q does not match pattern %s", v.Text(), expr)
		}
		return nil
	})
}

// OneOf requires a text value to be one of the allowed strings.
func OneOf(allowed ...string) Validator {
	desc := fmt.Sprintf("one of %v", allowed)
	return Custom(desc, func(v *value.Value) error {
		for _, a := range allowed {
			if v.Text() == a {
				return nil
			}
		}
		return fmt.Errorf("value %q must be one of: %v", v.Text(), allowed)
	})
}

// numeric extracts a float64 from int and float cells.
func numeric(v *value.Value) (float64, error) {
	switch v.Kind() {
	case value.KindInt:
		return float64(v.Int()), nil
	case value.KindFloat:
		return v.Float(), nil
	default:
		return 0, fmt.Errorf("numeric rule applied to %s value", v.Kind())
	}
}
