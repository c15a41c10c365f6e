package helpers

import (
	"fmt"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DealObserverError struct {
	Message string
	Cause   error
}

func (e *DealObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DealObserverError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// ValidationError rejects bad caller input before any upstream call is made.
type ValidationError struct{ DealObserverError }

// ConfigurationError reports an unusable configuration file.
type ConfigurationError struct{ DealObserverError }

// DatabaseError wraps failures of the favorites store.
type DatabaseError struct{ DealObserverError }

// AssemblyError reports that one of the fan-out upstream calls failed and the
// whole quote was abandoned.
type AssemblyError struct{ DealObserverError }

// -----------------------------------------------------------------------------

// TransientError is raised once the retry budget for 429/5xx/network failures
// is exhausted.
type TransientError struct {
	DealObserverError
	Attempts int
}

func NewTransientError(attempts int, cause error) *TransientError {
	return &TransientError{
		DealObserverError: DealObserverError{
			Message: fmt.Sprintf("exhausted %d attempts", attempts),
			Cause:   cause,
		},
		Attempts: attempts,
	}
}

// -----------------------------------------------------------------------------

// UpstreamStatusError is a non-retryable upstream HTTP status. Body holds at
// most the first 256 bytes of the response.
type UpstreamStatusError struct {
	Status int
	Body   string
}

func (e *UpstreamStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d | body=%s", e.Status, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}
