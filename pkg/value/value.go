// Package value defines the Value-With-Rationale primitive that every numeric
// input of a business case or market analysis is expressed in.
package value

import (
	"fmt"
	"strings"

	"github.com/iwvelando/business-case/pkg/format"
)

// Value couples a value with its unit and the reason it was chosen. Values
// are treated as immutable: edits build a new Value.
type Value[T comparable] struct {
	Value     T      `json:"value" yaml:"value"`
	Unit      string `json:"unit" yaml:"unit"`
	Rationale string `json:"rationale" yaml:"rationale"`
}

// Number is the numeric Value used throughout the assumption trees.
type Number = Value[float64]

// NewNumber builds a Number.
func NewNumber(v float64, unit, rationale string) Number {
	return Number{Value: v, Unit: unit, Rationale: rationale}
}

// WithValue returns a copy carrying v.
func (v Value[T]) WithValue(n T) Value[T] {
	v.Value = n
	return v
}

// WithRationale returns a copy carrying rationale.
func (v Value[T]) WithRationale(rationale string) Value[T] {
	v.Rationale = rationale
	return v
}

// Equal reports whether value, unit and rationale all match.
func (v Value[T]) Equal(other Value[T]) bool {
	return v.Value == other.Value && v.Unit == other.Unit && v.Rationale == other.Rationale
}

// HasRationale reports whether a non-blank rationale is present.
func (v Value[T]) HasRationale() bool {
	return strings.TrimSpace(v.Rationale) != ""
}

// IsPlaceholderRationale reports whether the rationale is template filler.
func (v Value[T]) IsPlaceholderRationale() bool {
	return IsPlaceholder(v.Rationale)
}

// String formats the value with its unit.
func (v Value[T]) String() string {
	switch n := any(v.Value).(type) {
	case float64:
		return format.Value(n, v.Unit)
	case int:
		return format.Value(float64(n), v.Unit)
	default:
		if v.Unit == "" {
			return fmt.Sprint(v.Value)
		}
		return fmt.Sprintf("%v %s", v.Value, v.Unit)
	}
}

var placeholderMarkers = []string{
	"todo",
	"tbd",
	"placeholder",
	"lorem ipsum",
	"xxx",
	"enter rationale",
	"add rationale",
	"your rationale",
}

// IsPlaceholder reports whether text looks like unfilled template content.
func IsPlaceholder(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "n/a" || lower == "..." || lower == "?" {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
