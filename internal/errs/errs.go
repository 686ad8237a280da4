package errs

import (
	"context"
	"errors"
)

// Kind classifies per-instrument failures for cycle summaries and metrics.
type Kind string

const (
	KindNone                Kind = ""
	KindInsufficientHistory Kind = "INSUFFICIENT_HISTORY"
	KindDataUnavailable     Kind = "DATA_UNAVAILABLE"
	KindValidationFailed    Kind = "VALIDATION_FAILED"
	KindAIUnavailable       Kind = "AI_UNAVAILABLE"
	KindTimeout             Kind = "TIMEOUT"
	KindConfiguration       Kind = "CONFIGURATION"
)

var (
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrDataUnavailable     = errors.New("data unavailable")
	ErrAIUnavailable       = errors.New("ai confirmation unavailable")
	ErrTimeout             = errors.New("cycle deadline exceeded")
	ErrConfiguration       = errors.New("invalid configuration")
)

// Classify maps an error to its Kind. Unknown errors count as data
// failures: they are always collaborator errors by construction, the CPU
// stages return only the sentinels above.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInsufficientHistory):
		return KindInsufficientHistory
	case errors.Is(err, ErrAIUnavailable):
		return KindAIUnavailable
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTimeout
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindDataUnavailable
	}
}
