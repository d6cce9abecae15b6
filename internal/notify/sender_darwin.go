//go:build darwin

package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// darwinSender implements Sender for macOS using osascript
type darwinSender struct{}

func newDarwinSender() Sender { return &darwinSender{} }

// newLinuxSender returns an unsupported sender on darwin
func newLinuxSender() Sender { return &unsupportedSender{} }

// newWindowsSender returns an unsupported sender on darwin
func newWindowsSender() Sender { return &unsupportedSender{} }

func (s *darwinSender) Available() error {
	if !toolAvailable("osascript") {
		return errors.New("osascript not found")
	}
	return nil
}

// Send shows the notification via an AppleScript display notification.
func (s *darwinSender) Send(ctx context.Context, title, message string, _ Status) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.CommandContext(ctx, "osascript", "-e", script).Run()
}

func (s *darwinSender) Tool() string { return "osascript" }
