//go:build linux

package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// linuxSender implements Sender for Linux using notify-send
type linuxSender struct{}

func newLinuxSender() Sender { return &linuxSender{} }

// newDarwinSender returns an unsupported sender on linux
func newDarwinSender() Sender { return &unsupportedSender{} }

// newWindowsSender returns an unsupported sender on linux
func newWindowsSender() Sender { return &unsupportedSender{} }

// hasDisplay checks if a display environment is available
func hasDisplay() bool {
	// X11 or Wayland session
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func (s *linuxSender) Available() error {
	if !hasDisplay() {
		return errors.New("DISPLAY not set (no GUI session)")
	}
	if !toolAvailable("notify-send") {
		return errors.New("notify-send not found")
	}
	return nil
}

// Send shows the notification via notify-send, mapping job failure to
// critical urgency.
func (s *linuxSender) Send(ctx context.Context, title, message string, status Status) error {
	urgency := "normal"
	if status == StatusFailure {
		urgency = "critical"
	}

	cmd := exec.CommandContext(ctx, "notify-send", "-u", urgency, title, message)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func (s *linuxSender) Tool() string { return "notify-send" }
