package board

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigurationError with errors.Is.
var ErrConfiguration = errors.New("board configuration error")

// Reason classifies a ConfigurationError.
type Reason string

const (
	ReasonOddCells           Reason = "odd_cells"
	ReasonInsufficientLabels Reason = "insufficient_labels"
	ReasonDuplicateLabel     Reason = "duplicate_label"
	ReasonInvalidOption      Reason = "invalid_option"
)

// ConfigurationError reports a board that cannot be built. It is a content
// or caller bug and is never retried.
type ConfigurationError struct {
	Reason Reason
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("board configuration: %s: %s", e.Reason, e.Detail)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(reason Reason, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
