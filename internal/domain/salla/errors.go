package salla

import (
	"errors"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Domain Errors
// ---------------------------------------------------------------------------

var (
	// Credential errors
	ErrCredentialNotFound   = errors.New("salla: credential not found")
	ErrCredentialIncomplete = errors.New("salla: credential missing refresh token")
	ErrOAuthNotConfigured   = errors.New("salla: oauth client not configured")

	// Link errors
	ErrLinkNotFound      = errors.New("salla: external link not found")
	ErrLinkInvalidKind   = errors.New("salla: invalid entity kind")
	ErrLinkEmptyLocalKey = errors.New("salla: empty local key")
	ErrLinkEmptyRemoteID = errors.New("salla: empty remote id")

	// Field sync errors
	ErrFieldStateNotFound = errors.New("salla: field sync state not found")

	// Category errors
	ErrCategoryNotFound      = errors.New("salla: category not found")
	ErrCategoryInvalidBounds = errors.New("salla: invalid category interval bounds")

	// Manifest errors
	ErrManifestNotFound = errors.New("salla: image manifest not found")

	// Order errors
	ErrOrderStatusNotFound = errors.New("salla: order status not found")

	// Webhook errors
	ErrWebhookBadSignature = errors.New("salla: webhook signature mismatch")
	ErrWebhookNoSecret     = errors.New("salla: webhook secret not configured")

	// Stock errors
	ErrWarehouseNotFound = errors.New("salla: warehouse not found")
)

// ---------------------------------------------------------------------------
// Remote API error taxonomy
// ---------------------------------------------------------------------------
//
// Every failed remote call maps to exactly one of the types below. The client
// never retries; callers branch with errors.As and the Is* predicates.

// APIError is the base remote failure: any error status not covered by a more
// specific type. All specific remote errors embed it.
type APIError struct {
	// StatusCode is the HTTP status returned by the platform, 0 when the
	// request never produced a response.
	StatusCode int
	// Message is the platform-supplied error message when present, otherwise
	// a short description of the failure.
	Message string
	// Body holds the raw response body for diagnostics, truncated by the
	// client.
	Body string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("salla: remote request failed: %s", e.Message)
	}
	return fmt.Sprintf("salla: remote request failed (status %d): %s", e.StatusCode, e.Message)
}

// AuthenticationError is returned for 401 responses. The bearer token was
// rejected; a token refresh may recover.
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("salla: authentication rejected (status %d): %s", e.StatusCode, e.Message)
}

// NotFoundError is returned for 404 responses. Resource identifies what was
// looked up, e.g. "product sku=ABC-1".
type NotFoundError struct {
	APIError
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("salla: %s not found", e.Resource)
	}
	return "salla: resource not found"
}

// ValidationError is returned for 422 responses and carries the per-field
// messages the platform reported.
type ValidationError struct {
	APIError
	// FieldErrors maps payload field name to the messages returned for it.
	FieldErrors map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("salla: payload rejected: %s", e.Message)
}

// RateLimitError is returned for 429 responses. RetryAfter is parsed from the
// Retry-After header, zero when absent.
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("salla: rate limited, retry after %s", e.RetryAfter)
	}
	return "salla: rate limited"
}

// TimeoutError is returned when the request deadline elapsed before a
// response arrived.
type TimeoutError struct {
	APIError
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("salla: request timed out: %s", e.Message)
}

// ConnectionError is returned when the connection could not be established or
// broke mid-request.
type ConnectionError struct {
	APIError
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("salla: connection failed: %s", e.Message)
}

// ---------------------------------------------------------------------------
// Predicates
// ---------------------------------------------------------------------------

// IsNotFound reports whether err is a remote NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAuthentication reports whether err is a remote AuthenticationError.
func IsAuthentication(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsRateLimit reports whether err is a RateLimitError, returning the parsed
// retry-after delay when it is.
func IsRateLimit(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

// IsValidation reports whether err is a ValidationError, returning it for
// access to the field messages.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsTransient reports whether err is a timeout or connection failure that a
// later attempt could plausibly succeed on.
func IsTransient(err error) bool {
	var te *TimeoutError
	var ce *ConnectionError
	return errors.As(err, &te) || errors.As(err, &ce)
}
