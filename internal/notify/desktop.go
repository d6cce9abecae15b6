package notify

import (
	"context"
	"fmt"
)

// DesktopNotifier delivers the payload to the local desktop session through
// the platform's native notification tool (notify-send, osascript, or
// PowerShell). A missing tool or a headless session is a failure for this
// channel only; it never affects other channels.
type DesktopNotifier struct {
	sender Sender
}

// NewDesktopNotifier creates a desktop notifier using the sender for the
// current platform.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{sender: NewSender()}
}

// NewDesktopNotifierWithSender creates a notifier with a custom sender (for testing).
func NewDesktopNotifierWithSender(sender Sender) *DesktopNotifier {
	return &DesktopNotifier{sender: sender}
}

// Name returns the channel name
func (d *DesktopNotifier) Name() string { return string(KindDesktop) }

// Send invokes the platform notification tool once.
func (d *DesktopNotifier) Send(ctx context.Context, p Payload) SendResult {
	target := d.sender.Tool()

	if err := d.sender.Available(); err != nil {
		return SendResult{Channel: d.Name(), Target: target, Error: err.Error()}
	}

	if err := d.sender.Send(ctx, p.Title, p.Message, p.Context.Status); err != nil {
		return SendResult{
			Channel: d.Name(),
			Target:  target,
			Error:   fmt.Sprintf("%s: %v", target, err),
		}
	}
	return SendResult{Channel: d.Name(), Target: target, Ok: true}
}
