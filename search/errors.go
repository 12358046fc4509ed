package search

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedArity is returned for a seed grouping that does not have
	// one, two or three elements.
	ErrUnsupportedArity = errors.New("unsupported grouping arity")

	// ErrNoGroupings is returned when no seed grouping is given.
	ErrNoGroupings = errors.New("no seed groupings")

	// ErrInvalidDenomCut is returned for a denominator cut below one.
	ErrInvalidDenomCut = errors.New("denominator cut must be positive")

	// ErrInvalidSeed is returned for a seed that cannot be represented.
	ErrInvalidSeed = errors.New("seed value out of range")
)

// GroupingError describes the offending grouping of an input contract violation.
type GroupingError struct {
	Index int
	Size  int
	cause error
}

func (e *GroupingError) Error() string {
	return fmt.Sprintf("grouping %d (size %d): %v", e.Index, e.Size, e.cause)
}

func (e *GroupingError) Unwrap() error { return e.cause }
