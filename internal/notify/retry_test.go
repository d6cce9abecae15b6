package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendWithRetry_FirstAttemptSucceeds(t *testing.T) {
	t.Parallel()

	n := &fakeNotifier{name: "ok"}
	ch := Channel{Name: "webhook", Notifier: n, Retry: fastRetry(5)}

	res := sendWithRetry(context.Background(), ch, testPayload())

	assert.True(t, res.Ok)
	assert.Equal(t, "webhook", res.Channel)
	assert.Equal(t, 1, res.Attempts)
	assert.EqualValues(t, 1, n.calls.Load())
}

func TestSendWithRetry_FailsTwiceThenSucceeds(t *testing.T) {
	t.Parallel()

	n := &fakeNotifier{name: "flaky", failFirst: 2}
	ch := Channel{Name: "webhook", Notifier: n, Retry: fastRetry(2)}

	res := sendWithRetry(context.Background(), ch, testPayload())

	assert.True(t, res.Ok)
	assert.Equal(t, 3, res.Attempts)
	assert.EqualValues(t, 3, n.calls.Load())
}

func TestSendWithRetry_Exhaustion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		maxRetries   int
		wantAttempts int
	}{
		"no retries":    {maxRetries: 0, wantAttempts: 1},
		"two retries":   {maxRetries: 2, wantAttempts: 3},
		"three retries": {maxRetries: 3, wantAttempts: 4},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			n := &fakeNotifier{name: "down", failFirst: 1 << 30}
			ch := Channel{Name: "email", Notifier: n, Retry: fastRetry(tt.maxRetries)}

			res := sendWithRetry(context.Background(), ch, testPayload())

			assert.False(t, res.Ok)
			assert.Equal(t, tt.wantAttempts, res.Attempts)
			assert.Equal(t, "forced failure", res.Error)
			assert.EqualValues(t, tt.wantAttempts, n.calls.Load())
		})
	}
}

func TestSendWithRetry_AttemptTimeoutIsRetried(t *testing.T) {
	t.Parallel()

	// The notifier blocks well past the attempt timeout, so each attempt
	// fails on the deadline and remains eligible for retry.
	n := &fakeNotifier{name: "slow", delay: time.Minute}
	ch := Channel{Name: "webhook", Notifier: n, Retry: RetrySpec{
		MaxRetries: 1,
		Backoff:    time.Millisecond,
		Timeout:    20 * time.Millisecond,
		Strategy:   BackoffLinear,
	}}

	start := time.Now()
	res := sendWithRetry(context.Background(), ch, testPayload())

	assert.False(t, res.Ok)
	assert.Equal(t, 2, res.Attempts)
	assert.Contains(t, res.Error, "deadline exceeded")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSendWithRetry_PanicBecomesFailedResult(t *testing.T) {
	t.Parallel()

	ch := Channel{Name: "desktop", Notifier: &panicNotifier{}, Retry: fastRetry(1)}

	res := sendWithRetry(context.Background(), ch, testPayload())

	assert.False(t, res.Ok)
	assert.Equal(t, "desktop", res.Channel)
	assert.Equal(t, 2, res.Attempts)
	assert.Contains(t, res.Error, "notifier panic: boom")
}

func TestRetrySpec_Schedule(t *testing.T) {
	t.Parallel()

	t.Run("linear grows by base per attempt", func(t *testing.T) {
		t.Parallel()
		spec := RetrySpec{Backoff: 2 * time.Second, Strategy: BackoffLinear}
		delays := spec.schedule()

		assert.Equal(t, 2*time.Second, delays.NextBackOff())
		assert.Equal(t, 4*time.Second, delays.NextBackOff())
		assert.Equal(t, 6*time.Second, delays.NextBackOff())

		delays.Reset()
		assert.Equal(t, 2*time.Second, delays.NextBackOff())
	})

	t.Run("exponential doubles", func(t *testing.T) {
		t.Parallel()
		spec := RetrySpec{Backoff: time.Second, Strategy: BackoffExponential}
		delays := spec.schedule()

		assert.Equal(t, time.Second, delays.NextBackOff())
		assert.Equal(t, 2*time.Second, delays.NextBackOff())
		assert.Equal(t, 4*time.Second, delays.NextBackOff())
	})
}
