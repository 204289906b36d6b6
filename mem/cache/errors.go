package cache

import "fmt"

// Constraint identifies a configuration rule.
type Constraint string

// Configuration rules that can be violated.
const (
	ConstraintNonPositive        Constraint = "non-positive"
	ConstraintNotPowerOfTwo      Constraint = "not-power-of-two"
	ConstraintBlockExceedsTotal  Constraint = "block-exceeds-total"
	ConstraintNotDivisible       Constraint = "not-divisible"
	ConstraintUnknownPlacement   Constraint = "unknown-placement"
	ConstraintUnknownWritePolicy Constraint = "unknown-write-policy"
)

// A ConfigurationError reports that a cache cannot be created with the given
// configuration.
type ConfigurationError struct {
	Field      string
	Value      int
	Constraint Constraint
}

func newConfigurationError(
	field string,
	value int,
	constraint Constraint,
) *ConfigurationError {
	return &ConfigurationError{
		Field:      field,
		Value:      value,
		Constraint: constraint,
	}
}

func (e *ConfigurationError) Error() string {
	var reason string

	switch e.Constraint {
	case ConstraintNonPositive:
		reason = "must be positive"
	case ConstraintNotPowerOfTwo:
		reason = "must be a power of two"
	case ConstraintBlockExceedsTotal:
		reason = "cannot exceed the total size"
	case ConstraintNotDivisible:
		reason = "must be a multiple of the block size"
	case ConstraintUnknownPlacement:
		reason = "is not a known placement"
	case ConstraintUnknownWritePolicy:
		reason = "is not a known write policy"
	default:
		reason = "violates " + string(e.Constraint)
	}

	return fmt.Sprintf("invalid cache configuration: %s %d %s",
		e.Field, e.Value, reason)
}
