// Package notify implements the jobdone dispatch engine.
//
// The engine takes a resolved list of channels (webhook, email, desktop) and
// a notification payload, sends the payload to every channel concurrently,
// wraps each channel in a retry-with-backoff policy with a per-attempt
// timeout, and aggregates the per-channel outcomes into a single exit status.
//
// # Design
//
//   - Notifier is the per-channel capability: one Send call is one attempt,
//     and failures never cross the interface boundary as panics or errors;
//     they are converted into a SendResult with Ok=false.
//   - Dispatcher fans out one goroutine per channel and joins them all before
//     returning. Channels are fully independent: no shared retry budget, no
//     cross-channel cancellation, and a slow channel never delays another.
//   - Aggregate folds the ordered SendResults into an exit code (0 when every
//     channel succeeded, 1 otherwise) and a human-readable summary.
//
// Notifications are best-effort and fire-and-forget: the engine never
// persists history and does not guarantee exactly-once delivery.
package notify
