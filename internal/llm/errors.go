package llm

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ProviderError represents a failure talking to the LLM provider. Fatal
// errors (authentication, invalid request) are never retried; everything
// else (rate limits, transport failures, 5xx) is treated as transient.
type ProviderError struct {
	Message string
	Fatal   bool
	Cause   error
}

func (e *ProviderError) Error() string {
	kind := "transient"
	if e.Fatal {
		kind = "fatal"
	}
	if e.Cause != nil {
		return fmt.Sprintf("provider error (%s): %s: %v", kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error (%s): %s", kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Classify wraps an error from the provider SDK into a ProviderError,
// deciding retryability from the HTTP status code when one is available.
func Classify(err error) *ProviderError {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 401, 403, 404:
			return &ProviderError{
				Message: fmt.Sprintf("request rejected with status %d", apiErr.Code),
				Fatal:   true,
				Cause:   err,
			}
		}
		// 429 and 5xx fall through as retryable
		return &ProviderError{
			Message: fmt.Sprintf("provider returned status %d", apiErr.Code),
			Cause:   err,
		}
	}

	// Network-level failures carry no status code; assume transient.
	return &ProviderError{
		Message: "call failed",
		Cause:   err,
	}
}
