package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// schedule builds the backoff schedule for one channel's retry sequence.
// Linear grows the delay as base × attempt-number; exponential doubles it
// after every retry. No jitter: the delays are deterministic so the
// wall-clock bound of a retry sequence stays predictable.
func (r RetrySpec) schedule() backoff.BackOff {
	if r.Strategy == BackoffExponential {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = r.Backoff
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxInterval = time.Hour
		b.MaxElapsedTime = 0
		b.Reset()
		return b
	}
	return &linearBackOff{base: r.Backoff}
}

// linearBackOff implements backoff.BackOff with base × attempt delays.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.base * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

// sendWithRetry runs one channel's full retry sequence: up to MaxRetries+1
// attempts, each bounded by the policy's timeout, separated by the schedule's
// delays. It returns on the first success; after exhaustion it returns the
// last failed result with the total attempts performed.
func sendWithRetry(ctx context.Context, ch Channel, p Payload) SendResult {
	delays := ch.Retry.schedule()

	var last SendResult
	for attempt := 1; ; attempt++ {
		res := attemptSend(ctx, ch, p)
		res.Channel = ch.Name
		res.Attempts = attempt
		if res.Ok {
			return res
		}
		last = res

		if attempt > ch.Retry.MaxRetries {
			return last
		}

		select {
		case <-time.After(delays.NextBackOff()):
		case <-ctx.Done():
			return last
		}
	}
}

// attemptSend performs one attempt under the per-attempt timeout, converting
// a panicking Notifier into a failed result so the channel is never dropped
// from the outcome.
func attemptSend(ctx context.Context, ch Channel, p Payload) (res SendResult) {
	defer func() {
		if r := recover(); r != nil {
			res = SendResult{Error: fmt.Sprintf("notifier panic: %v", r)}
		}
	}()

	attemptCtx := ctx
	if ch.Retry.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, ch.Retry.Timeout)
		defer cancel()
	}
	return ch.Notifier.Send(attemptCtx, p)
}
