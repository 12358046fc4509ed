package nananiji

import (
	"errors"
	"fmt"

	"github.com/komori-n/nananiji-calculator/blobstore"
	"github.com/komori-n/nananiji-calculator/persistence"
	"github.com/komori-n/nananiji-calculator/search"
)

var (
	// ErrNoMatchingRule marks a target that no decomposition rule resolves.
	// It indicates a defect in the built ordering, not a bad request.
	ErrNoMatchingRule = errors.New("no decomposition rule matches")

	// ErrStepLimit is returned when generation exceeds the configured number
	// of decomposition steps.
	ErrStepLimit = errors.New("generation step limit exceeded")

	// ErrInvalidState is returned when a persisted generator is malformed.
	ErrInvalidState = errors.New("invalid generator state")

	// ErrInvalidGrouping is returned for seed groupings that cannot be searched.
	ErrInvalidGrouping = errors.New("invalid seed grouping")

	// ErrInvalidOption is returned for an out-of-range build option.
	ErrInvalidOption = errors.New("invalid option")

	// ErrNotFound is returned when a persisted generator does not exist.
	ErrNotFound = errors.New("generator not found")
)

// NoRuleError reports the target for which no rule matched.
type NoRuleError struct {
	Target int64
}

func (e *NoRuleError) Error() string {
	return fmt.Sprintf("no decomposition rule matches %d", e.Target)
}

func (e *NoRuleError) Unwrap() error { return ErrNoMatchingRule }

// StepLimitError reports the target being decomposed when the step budget ran out.
type StepLimitError struct {
	Target int64
	Steps  int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("generation of %d exceeded %d steps", e.Target, e.Steps)
}

func (e *StepLimitError) Unwrap() error { return ErrStepLimit }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ge *search.GroupingError
	if errors.As(err, &ge) || errors.Is(err, search.ErrNoGroupings) {
		return fmt.Errorf("%w: %w", ErrInvalidGrouping, err)
	}
	if errors.Is(err, search.ErrInvalidDenomCut) {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if errors.Is(err, persistence.ErrInvalidMagic) ||
		errors.Is(err, persistence.ErrInvalidVersion) ||
		errors.Is(err, persistence.ErrTruncated) ||
		errors.Is(err, persistence.ErrUnknownCodec) ||
		errors.Is(err, persistence.ErrUnknownCompression) ||
		errors.Is(err, persistence.ErrTooLarge) ||
		errors.Is(err, persistence.ErrCorrupt) ||
		persistence.IsChecksumMismatch(err) {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	return err
}
