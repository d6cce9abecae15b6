package cli

import (
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/ariel-frischer/jobdone/internal/config"
	"github.com/ariel-frischer/jobdone/internal/notify"
)

// resolveChannels turns the resolved configuration into the ordered,
// deduplicated channel list handed to the dispatcher. Channels that are
// selected but unusable (no valid webhook URLs, incomplete email settings)
// are skipped with a warning; if nothing remains that is a configuration
// error.
func resolveChannels(cfg *config.Configuration, log *zap.Logger) ([]notify.Channel, error) {
	names := cfg.Channels
	if len(names) == 0 {
		// Default to webhook when URLs are configured, plus desktop
		if len(cfg.Webhook.URLs) > 0 {
			names = append(names, string(notify.KindWebhook))
		}
		names = append(names, string(notify.KindDesktop))
	}

	retry := cfg.RetrySpec()
	seen := make(map[string]bool)
	var channels []notify.Channel
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		kind := notify.ChannelKind(name)
		switch kind {
		case notify.KindWebhook:
			webhook := cfg.Webhook
			webhook.URLs = validURLs(webhook.URLs, log)
			if len(webhook.URLs) == 0 {
				log.Warn("webhook channel selected but no valid URLs configured")
				continue
			}
			ch, err := notify.NewChannel(kind, webhook, cfg.Email, retry)
			if err != nil {
				return nil, err
			}
			channels = append(channels, ch)
		case notify.KindEmail:
			if len(cfg.Email.To) == 0 || cfg.Email.SMTPHost == "" || cfg.Email.From == "" {
				log.Warn("email channel not configured completely (to/smtp_host/from)")
				continue
			}
			ch, err := notify.NewChannel(kind, cfg.Webhook, cfg.Email, retry)
			if err != nil {
				return nil, err
			}
			channels = append(channels, ch)
		case notify.KindDesktop:
			ch, err := notify.NewChannel(kind, cfg.Webhook, cfg.Email, retry)
			if err != nil {
				return nil, err
			}
			channels = append(channels, ch)
		}
	}

	if len(channels) == 0 {
		return nil, errors.New("no notifiers resolved from configuration")
	}
	return channels, nil
}

// validURLs filters out webhook URLs without a scheme and host.
func validURLs(urls []string, log *zap.Logger) []string {
	var valid []string
	for _, u := range urls {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			log.Warn("invalid webhook url", zap.String("url", u))
			continue
		}
		valid = append(valid, u)
	}
	return valid
}
