// Package cli provides the Cobra-based command surface for jobdone. It owns
// argument parsing, trigger evaluation, channel resolution, and rendering of
// per-channel results; delivery itself lives in internal/notify.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is the jobdone release version
const Version = "0.1.0"

// options holds the flag values for one invocation
type options struct {
	job      string
	title    string
	message  string
	stdin    bool
	exitCode int

	channel        string
	webhookURLs    []string
	headers        []string
	emailTo        []string
	emailSubject   string
	smtpHost       string
	smtpPort       int
	smtpUser       string
	smtpPass       string
	smtpPassPrompt bool
	emailFrom      string

	on              string
	timeout         float64
	retries         int
	backoff         float64
	backoffStrategy string

	configPath string
	verbose    bool
	dryRun     bool
}

// NewRootCmd builds the jobdone root command.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

// newRootCmd also returns the bound options for tests.
func newRootCmd() (*cobra.Command, *options) {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "jobdone",
		Short:   "Notify when a shell task is done (webhook/email/desktop)",
		Version: Version,
		Long: `jobdone - task completion notifications

Run it after a shell task to deliver a notification to one or more channels.
Configuration merges CLI flags, YAML config files, and JOBDONE_* environment
variables (CLI > YAML > ENV).`,
		Example: `  # Notify on the desktop when the backup finishes
  ./backup.sh; jobdone -j backup -e $?

  # Webhook + email, only on failure, with retries
  make test; jobdone -j tests -e $? --on failure -c webhook,email \
    --webhook-url https://hooks.example.com/jobs --retries 2

  # Read the message body from a pipe
  tail -1 build.log | jobdone -j build --stdin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.job, "job", "j", "job", "Job name")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "Job Done", "Notification title")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Notification message")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "Read message from STDIN")
	cmd.Flags().IntVarP(&opts.exitCode, "exit-code", "e", 0, "Exit code of the previous task")
	cmd.Flags().StringVar(&opts.on, "on", "always", "Trigger condition: success, failure, or always")
	cmd.Flags().StringVarP(&opts.channel, "channel", "c", "", "Comma-separated channels: webhook,email,desktop")

	cmd.Flags().StringArrayVar(&opts.webhookURLs, "webhook-url", nil, "Webhook URL (can be repeated)")
	cmd.Flags().StringArrayVar(&opts.headers, "header", nil, "Extra webhook header k:v (can be repeated)")

	cmd.Flags().StringArrayVar(&opts.emailTo, "email-to", nil, "Email recipient (can be repeated)")
	cmd.Flags().StringVar(&opts.emailSubject, "email-subject", "", "Email subject override")
	cmd.Flags().StringVar(&opts.smtpHost, "smtp-host", "", "SMTP host")
	cmd.Flags().IntVar(&opts.smtpPort, "smtp-port", 587, "SMTP port")
	cmd.Flags().StringVar(&opts.smtpUser, "smtp-user", "", "SMTP username")
	cmd.Flags().StringVar(&opts.smtpPass, "smtp-pass", "", "SMTP password")
	cmd.Flags().BoolVar(&opts.smtpPassPrompt, "smtp-pass-prompt", false, "Prompt for SMTP password interactively")
	cmd.Flags().StringVar(&opts.emailFrom, "email-from", "", "Email sender address")

	cmd.Flags().Float64Var(&opts.timeout, "timeout", 10.0, "Per-attempt timeout in seconds")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "Retries per channel")
	cmd.Flags().Float64Var(&opts.backoff, "backoff", 2.0, "Base backoff seconds between retries")
	cmd.Flags().StringVar(&opts.backoffStrategy, "backoff-strategy", "linear", "Backoff growth: linear or exponential")

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file path (YAML)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Do not send, only log what would be sent")

	return cmd, opts
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
