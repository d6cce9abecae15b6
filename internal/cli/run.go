package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ariel-frischer/jobdone/internal/config"
	"github.com/ariel-frischer/jobdone/internal/notify"
)

// run is the single entry point: resolve config, evaluate the trigger,
// build the payload, dispatch, and map the outcome to an exit code.
func run(cmd *cobra.Command, opts *options) error {
	if opts.stdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err == nil {
			opts.message = strings.TrimSpace(string(data))
		}
	}

	if opts.smtpPassPrompt && opts.smtpPass == "" {
		opts.smtpPass = promptSMTPPassword(cmd.ErrOrStderr())
	}

	cfg, err := config.Load(opts.configPath, buildOverrides(cmd, opts))
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("config error: %v", err))
		return NewExitError(ExitConfigError)
	}

	log := newLogger(opts.verbose)
	defer func() { _ = log.Sync() }()

	if !ShouldTrigger(cfg.On, opts.exitCode) {
		log.Debug("trigger condition not met",
			zap.String("on", cfg.On),
			zap.Int("exit_code", opts.exitCode))
		return nil
	}

	message := opts.message
	if message == "" {
		message = fmt.Sprintf("Job %s finished with exit code %d.", opts.job, opts.exitCode)
	}
	payload := notify.Payload{
		Title:   opts.title,
		Message: message,
		Context: notify.NewContext(opts.job, opts.exitCode, hostname(), username()),
	}

	channels, err := resolveChannels(cfg, log)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("error: %v", err))
		return NewExitError(ExitConfigError)
	}

	spin := startSpinner(opts.verbose || opts.dryRun)
	results := notify.NewDispatcher(log, opts.dryRun).Dispatch(cmd.Context(), payload, channels)
	if spin != nil {
		spin.Stop()
	}

	outcome := notify.Aggregate(results)
	printOutcome(cmd.OutOrStdout(), outcome)
	if outcome.ExitCode != 0 {
		return NewExitError(ExitDeliveryFailed)
	}
	return nil
}

// buildOverrides collects the dotted config keys for every flag the user
// actually set, so unchanged flag defaults don't mask YAML or environment
// values.
func buildOverrides(cmd *cobra.Command, opts *options) map[string]interface{} {
	overrides := make(map[string]interface{})
	set := func(flag, key string, value interface{}) {
		if cmd.Flags().Changed(flag) {
			overrides[key] = value
		}
	}

	set("channel", "channels", splitChannels(opts.channel))
	set("webhook-url", "webhook.urls", opts.webhookURLs)
	set("header", "webhook.headers", parseHeaders(opts.headers))
	set("email-to", "email.to", opts.emailTo)
	set("email-subject", "email.subject", opts.emailSubject)
	set("smtp-host", "email.smtp_host", opts.smtpHost)
	set("smtp-port", "email.smtp_port", opts.smtpPort)
	set("smtp-user", "email.smtp_user", opts.smtpUser)
	// The prompted password lives in opts.smtpPass too, so either flag
	// routes it into the override set.
	if cmd.Flags().Changed("smtp-pass") || cmd.Flags().Changed("smtp-pass-prompt") {
		overrides["email.smtp_pass"] = opts.smtpPass
	}
	set("email-from", "email.from", opts.emailFrom)
	set("on", "on", opts.on)
	set("retries", "retries", opts.retries)
	set("backoff", "backoff", opts.backoff)
	set("timeout", "timeout", opts.timeout)
	set("backoff-strategy", "backoff_strategy", opts.backoffStrategy)
	return overrides
}

// splitChannels splits the -c value on commas, trimming whitespace.
func splitChannels(s string) []string {
	var channels []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			channels = append(channels, item)
		}
	}
	return channels
}

// parseHeaders converts repeated "k:v" flags into a header map. Items
// without a colon are ignored.
func parseHeaders(items []string) map[string]string {
	headers := make(map[string]string)
	for _, item := range items {
		k, v, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers
}

// printOutcome writes one colored line per channel result. Each result is
// rendered directly; the joined Summary is not split back apart, since a
// scrubbed error may itself contain newlines.
func printOutcome(w io.Writer, outcome notify.Outcome) {
	okPrefix := color.GreenString("[ok]")
	errPrefix := color.RedString("[error]")

	for _, r := range outcome.Results {
		prefix := okPrefix
		if !r.Ok {
			prefix = errPrefix
		}
		fmt.Fprintf(w, "%s %s\n", prefix, notify.SummaryLine(r))
	}
}
