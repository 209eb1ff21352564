package kaggle

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_CheckRateLimit(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(DefaultRate)
	r.now = func() time.Time { return now }

	assert.NoError(t, r.CheckRateLimit(nil))
	assert.NoError(t, r.CheckRateLimit(&http.Response{StatusCode: http.StatusOK}))

	err := r.CheckRateLimit(&http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{HeaderRetryAfter: []string{"10"}},
	})
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, now.Add(10*time.Second), rl.ResetAt)

	err = r.CheckRateLimit(&http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}})
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, now.Add(defaultBackoff), rl.ResetAt)
}

func TestRateLimiter_Wait(t *testing.T) {
	r := NewRateLimiter(0)
	for i := 0; i < 10; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}

	throttled := NewRateLimiter(0.001)
	require.NoError(t, throttled.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, throttled.Wait(ctx))
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNotFound(&APIError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsNotFound(&APIError{StatusCode: http.StatusBadRequest}))
	assert.True(t, IsUnauthorized(&APIError{StatusCode: http.StatusForbidden}))
	assert.False(t, IsUnauthorized(ErrMemberNotFound))
	assert.False(t, IsRateLimited(&APIError{StatusCode: http.StatusTooManyRequests}))
	assert.Contains(t, (&APIError{StatusCode: 500, Message: "boom", URL: "u"}).Error(), "500")
}
