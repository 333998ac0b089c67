package clients

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.True(t, policy.ShouldRetry(http.StatusInternalServerError, nil))
	assert.True(t, policy.ShouldRetry(http.StatusTooManyRequests, nil))
	assert.True(t, policy.ShouldRetry(0, errors.New("connection refused")))
	assert.False(t, policy.ShouldRetry(http.StatusNotFound, nil))
	assert.False(t, policy.ShouldRetry(http.StatusOK, nil))
}

func TestBackoff_GrowsExponentiallyUpToMax(t *testing.T) {
	policy := &RetryPolicy{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}

	assert.Equal(t, 100*time.Millisecond, policy.Backoff(0, 0))
	assert.Equal(t, 200*time.Millisecond, policy.Backoff(1, 0))
	assert.Equal(t, 400*time.Millisecond, policy.Backoff(2, 0))
	// Capped.
	assert.Equal(t, time.Second, policy.Backoff(10, 0))
}

func TestBackoff_RetryAfterTakesPrecedence(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, 7*time.Second, policy.Backoff(0, 7*time.Second))
}

func TestParseRetryAfter_Seconds(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "30")

	assert.Equal(t, 30*time.Second, ParseRetryAfter(resp))
}

func TestParseRetryAfter_Missing(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}

	assert.Equal(t, time.Duration(0), ParseRetryAfter(resp))
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker(2, 50*time.Millisecond)

	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.True(t, cb.Allow())
	cb.RecordFailure()

	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	time.Sleep(60 * time.Millisecond)

	// Reset timeout elapsed, a probe is admitted.
	assert.True(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	cb.RecordSuccess()
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}
