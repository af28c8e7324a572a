package salla

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// Error taxonomy Tests
// ---------------------------------------------------------------------------

func TestPredicates_MatchWrappedErrors(t *testing.T) {
	nf := &NotFoundError{APIError: APIError{StatusCode: 404}, Resource: "product sku=A-1"}
	wrapped := fmt.Errorf("push product: %w", nf)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsAuthentication(wrapped))
	assert.False(t, IsTransient(wrapped))
}

func TestIsRateLimit_ReturnsRetryAfter(t *testing.T) {
	rl := &RateLimitError{
		APIError:   APIError{StatusCode: 429},
		RetryAfter: 7 * time.Second,
	}

	d, ok := IsRateLimit(fmt.Errorf("list orders: %w", rl))
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, d)

	_, ok = IsRateLimit(&APIError{StatusCode: 500})
	assert.False(t, ok)
}

func TestIsValidation_ExposesFieldErrors(t *testing.T) {
	ve := &ValidationError{
		APIError:    APIError{StatusCode: 422, Message: "invalid payload"},
		FieldErrors: map[string][]string{"price": {"must be positive"}},
	}

	got, ok := IsValidation(fmt.Errorf("create: %w", ve))
	assert.True(t, ok)
	assert.Equal(t, []string{"must be positive"}, got.FieldErrors["price"])
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&TimeoutError{APIError{Message: "deadline exceeded"}}))
	assert.True(t, IsTransient(&ConnectionError{APIError{Message: "connection refused"}}))
	assert.False(t, IsTransient(&APIError{StatusCode: 500}))
	assert.False(t, IsTransient(nil))
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&APIError{StatusCode: 500, Message: "boom"}).Error(), "status 500")
	assert.Contains(t, (&NotFoundError{Resource: "category id=9"}).Error(), "category id=9")
	assert.Contains(t, (&RateLimitError{RetryAfter: time.Second}).Error(), "retry after")
}
