package lsystree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a setter receives a value of the wrong shape,
	// e.g. a non-finite position or a quaternion that is not unit length.
	// The receiver is left unchanged.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingRule is returned by Grow when a symbol of the current state has no rule.
	ErrMissingRule = errors.New("missing rule")

	// ErrStaleTopology is returned by Update when the last built fragment no longer
	// matches the current generation string or the shape-token map.
	ErrStaleTopology = errors.New("stale topology")
)

// MissingRuleError reports the first symbol Grow could not rewrite.
type MissingRuleError struct {
	Symbol     rune
	Position   int // rune offset in the state string
	Generation int // generation being rewritten
}

func (e *MissingRuleError) Error() string {
	return fmt.Sprintf("missing rule for symbol %q at position %d of generation %d", e.Symbol, e.Position, e.Generation)
}

func (e *MissingRuleError) Unwrap() error {
	return ErrMissingRule
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
