package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Sender is the platform-specific desktop notification backend.
type Sender interface {
	// Send shows one desktop notification, bounded by ctx
	Send(ctx context.Context, title, message string, status Status) error

	// Available reports whether the backend can deliver on this host,
	// with a descriptive error when it cannot
	Available() error

	// Tool names the underlying command, for results and summaries
	Tool() string
}

// NewSender creates the notification sender for the current OS. Unsupported
// platforms get a sender that fails every availability check.
func NewSender() Sender {
	switch runtime.GOOS {
	case "darwin":
		return newDarwinSender()
	case "linux":
		return newLinuxSender()
	case "windows":
		return newWindowsSender()
	default:
		return &unsupportedSender{}
	}
}

// toolAvailable checks if a command-line tool is available in PATH
func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// unsupportedSender reports unavailability on platforms without a native
// notification tool. Unlike a silent no-op, the desktop channel must surface
// the miss as a channel failure.
type unsupportedSender struct{}

func (s *unsupportedSender) Send(_ context.Context, _, _ string, _ Status) error {
	return s.Available()
}

func (s *unsupportedSender) Available() error {
	return fmt.Errorf("desktop notifications not supported on %s", runtime.GOOS)
}

func (s *unsupportedSender) Tool() string { return "none" }
