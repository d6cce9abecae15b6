package notify

import (
	"time"
)

// Source identifies jobdone as the origin of every payload it emits.
const Source = "jobdone"

// Status represents the outcome of the job that triggered the notification.
type Status string

const (
	// StatusSuccess indicates the job exited with code 0
	StatusSuccess Status = "success"
	// StatusFailure indicates the job exited with a non-zero code
	StatusFailure Status = "failure"
)

// StatusFromExitCode maps a shell exit code to a Status.
func StatusFromExitCode(code int) Status {
	if code == 0 {
		return StatusSuccess
	}
	return StatusFailure
}

// Context carries the immutable facts about the finished job. It is built
// once per invocation and shared read-only across all concurrent sends.
type Context struct {
	Job       string `json:"job"`
	Status    Status `json:"status"`
	ExitCode  int    `json:"exit_code"`
	Host      string `json:"host"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// NewContext builds a Context for a finished job. The timestamp is the
// current UTC time in RFC 3339 format.
func NewContext(job string, exitCode int, host, user string) Context {
	return Context{
		Job:       job,
		Status:    StatusFromExitCode(exitCode),
		ExitCode:  exitCode,
		Host:      host,
		User:      user,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    Source,
	}
}

// Payload is the title/message/context bundle delivered to every channel.
// It is immutable once built.
type Payload struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Context Context `json:"context"`
}

// ChannelKind identifies one of the three delivery mechanisms. The set is
// closed: adding a channel means adding a kind and a matching arm in
// NewChannel, not open-ended registration.
type ChannelKind string

const (
	KindWebhook ChannelKind = "webhook"
	KindEmail   ChannelKind = "email"
	KindDesktop ChannelKind = "desktop"
)

// ValidChannelKind checks if the given string names a known channel.
func ValidChannelKind(s string) bool {
	switch ChannelKind(s) {
	case KindWebhook, KindEmail, KindDesktop:
		return true
	default:
		return false
	}
}

// WebhookConfig holds connection parameters for the webhook channel.
// Every URL is an independent delivery target; all of them receive the
// same JSON body on each attempt.
type WebhookConfig struct {
	URLs    []string          `koanf:"urls"`
	Headers map[string]string `koanf:"headers"`
}

// EmailConfig holds SMTP connection parameters for the email channel.
type EmailConfig struct {
	SMTPHost string   `koanf:"smtp_host"`
	SMTPPort int      `koanf:"smtp_port"`
	SMTPUser string   `koanf:"smtp_user"`
	SMTPPass string   `koanf:"smtp_pass"`
	From     string   `koanf:"from"`
	To       []string `koanf:"to"`
	Subject  string   `koanf:"subject"`
}

// BackoffStrategy selects how the delay between retries grows. It is fixed
// globally for a run.
type BackoffStrategy string

const (
	// BackoffLinear sleeps base × attempt-number between retries
	BackoffLinear BackoffStrategy = "linear"
	// BackoffExponential doubles the delay after every retry
	BackoffExponential BackoffStrategy = "exponential"
)

// RetrySpec bounds one channel's retry sequence: up to MaxRetries retries
// after the first attempt, each attempt independently limited to Timeout,
// with Backoff as the base delay between attempts.
type RetrySpec struct {
	MaxRetries int
	Backoff    time.Duration
	Timeout    time.Duration
	Strategy   BackoffStrategy
}

// SendResult records the outcome of one channel's full retry sequence.
// Exactly one is produced per configured channel per run, and its Error is
// always scrubbed of secret material before it is stored.
type SendResult struct {
	Channel  string
	Target   string
	Ok       bool
	Error    string
	Attempts int
}
