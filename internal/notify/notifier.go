package notify

import (
	"context"
	"fmt"
)

// Notifier is the per-channel delivery capability. One Send call performs
// exactly one attempt (no internal retry) and must never propagate a failure
// across the boundary: network errors, SMTP rejections, and missing local
// tools are all reported through SendResult.Ok=false.
//
// The ctx carries the per-attempt deadline; an attempt that exceeds it
// reports a failed SendResult and remains eligible for retry.
type Notifier interface {
	// Name returns the channel name used in results and summaries
	Name() string

	// Send delivers the payload once
	Send(ctx context.Context, p Payload) SendResult
}

// Channel pairs a constructed Notifier with its retry policy. The channel
// owns its config exclusively for the duration of one run.
type Channel struct {
	Name     string
	Notifier Notifier
	Retry    RetrySpec
}

// NewChannel builds a Channel of the given kind from the matching config.
// The kind set is closed; unknown kinds are a programming error surfaced to
// the caller, not a dispatch-time failure.
func NewChannel(kind ChannelKind, webhook WebhookConfig, email EmailConfig, retry RetrySpec) (Channel, error) {
	var n Notifier
	switch kind {
	case KindWebhook:
		n = NewWebhookNotifier(webhook)
	case KindEmail:
		n = NewEmailNotifier(email)
	case KindDesktop:
		n = NewDesktopNotifier()
	default:
		return Channel{}, fmt.Errorf("unknown channel kind: %q", kind)
	}
	return Channel{Name: string(kind), Notifier: n, Retry: retry}, nil
}
