package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors (retryable)
const (
	// ErrCodeConnectionFailed indicates a failed connection to an upstream backend.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the upstream request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the upstream throttled or blocked the client.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Generation errors
const (
	// ErrCodeFailedGeneration indicates a provider could not produce a response.
	// This is the single error kind every provider surfaces to its caller,
	// regardless of the underlying transport or protocol cause.
	ErrCodeFailedGeneration ErrorCode = "FAILED_GENERATION"
	// ErrCodeUpstreamProtocol indicates the upstream answered with a non-success
	// status or an in-band error payload (e.g. a rate-limit notice inside a 200).
	ErrCodeUpstreamProtocol ErrorCode = "UPSTREAM_PROTOCOL"
)

// Caller errors
const (
	// ErrCodeConfiguration indicates an invalid option combination supplied by
	// calling code: a programmer error, raised at construction time.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	// ErrCodeInvalidInput indicates a malformed request from an API client.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates an unknown provider, model, or route.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnauthorized indicates a missing or invalid API credential.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
	ErrCodeRateLimited:      true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
