package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher fans one payload out to every configured channel concurrently
// and joins all of them before returning. The result slice always holds one
// SendResult per channel, in channel order, regardless of completion timing.
type Dispatcher struct {
	log    *zap.Logger
	dryRun bool
}

// NewDispatcher creates a dispatcher. In dry-run mode no network or process
// side effects occur: every channel gets a synthetic success and the payload
// that would have been sent is logged instead.
func NewDispatcher(log *zap.Logger, dryRun bool) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log.Named("dispatch"), dryRun: dryRun}
}

// Dispatch sends the payload to all channels and returns their results in
// channel order. A slow or failing channel never delays another channel's
// attempts; the call returns only when every channel has settled.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload, channels []Channel) []SendResult {
	log := d.log.With(zap.String("run_id", uuid.NewString()))

	if d.dryRun {
		return d.dispatchDryRun(log, p, channels)
	}

	results := make([]SendResult, len(channels))
	var wg sync.WaitGroup
	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			results[i] = sendWithRetry(ctx, ch, p)
			log.Debug("channel settled",
				zap.String("channel", results[i].Channel),
				zap.Bool("ok", results[i].Ok),
				zap.Int("attempts", results[i].Attempts),
				zap.String("error", results[i].Error))
		}(i, ch)
	}
	wg.Wait()
	return results
}

// dispatchDryRun synthesizes a success per channel and logs the payload
// instead of delivering it.
func (d *Dispatcher) dispatchDryRun(log *zap.Logger, p Payload, channels []Channel) []SendResult {
	log.Info("dry run, payload not sent",
		zap.String("title", p.Title),
		zap.String("message", p.Message),
		zap.String("job", p.Context.Job),
		zap.String("status", string(p.Context.Status)),
		zap.Int("exit_code", p.Context.ExitCode),
		zap.String("host", p.Context.Host),
		zap.String("user", p.Context.User),
		zap.String("timestamp", p.Context.Timestamp))

	results := make([]SendResult, len(channels))
	for i, ch := range channels {
		log.Info("dry run channel", zap.String("channel", ch.Name))
		results[i] = SendResult{Channel: ch.Name, Target: "dry-run", Ok: true, Attempts: 1}
	}
	return results
}
