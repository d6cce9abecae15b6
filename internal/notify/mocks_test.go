package notify

import (
	"context"
	"sync/atomic"
	"time"
)

// fakeNotifier is a scriptable Notifier for engine tests. It fails the
// first failFirst attempts, optionally blocks for delay (respecting ctx
// cancellation), and counts every invocation.
type fakeNotifier struct {
	name      string
	failFirst int
	delay     time.Duration
	calls     atomic.Int32
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(ctx context.Context, _ Payload) SendResult {
	n := f.calls.Add(1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return SendResult{Target: f.name, Error: ctx.Err().Error()}
		}
	}

	if int(n) <= f.failFirst {
		return SendResult{Target: f.name, Error: "forced failure"}
	}
	return SendResult{Target: f.name, Ok: true}
}

// panicNotifier panics on every Send to exercise the panic fence.
type panicNotifier struct{}

func (p *panicNotifier) Name() string { return "panic" }

func (p *panicNotifier) Send(context.Context, Payload) SendResult {
	panic("boom")
}

// fastRetry is a retry spec with negligible delays for tests.
func fastRetry(maxRetries int) RetrySpec {
	return RetrySpec{
		MaxRetries: maxRetries,
		Backoff:    time.Millisecond,
		Timeout:    time.Second,
		Strategy:   BackoffLinear,
	}
}

func testPayload() Payload {
	return Payload{
		Title:   "Job Done",
		Message: "Job backup finished with exit code 0.",
		Context: NewContext("backup", 0, "host1", "alice"),
	}
}
