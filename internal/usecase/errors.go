package usecase

import "fmt"

type ErrorCode string

const (
	ErrorValidation      ErrorCode = "VALIDATION_ERROR"
	ErrorConfiguration   ErrorCode = "CONFIGURATION_ERROR"
	ErrorUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	ErrorUpstream        ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal        ErrorCode = "INTERNAL_ERROR"
)

// Reasons refine a code for logging and for picking the client-facing message.
const (
	ReasonNoData          = "no_data"
	ReasonEmptyMessage    = "empty_message"
	ReasonInvalidHistory  = "invalid_history"
	ReasonAPIKeyMissing   = "api_key_missing"
	ReasonProviderTimeout = "provider_timeout"
	ReasonProviderStatus  = "provider_status"
	ReasonProviderFailure = "provider_failure"
)

// Error is the only error type Chat returns. Status carries the provider's
// HTTP status for ErrorUpstream; Details is safe to show to callers.
type Error struct {
	Code    ErrorCode
	Reason  string
	Status  int
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
