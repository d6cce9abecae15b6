package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// WebhookNotifier delivers the payload as a JSON POST to every configured
// URL. One attempt succeeds only if every URL accepts the request; a single
// failing URL fails the attempt as a whole and the next attempt re-sends to
// all URLs.
type WebhookNotifier struct {
	config WebhookConfig
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier for the given config.
// Per-attempt timeouts come from the Send context, not the client.
func NewWebhookNotifier(config WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		config: config,
		client: &http.Client{},
	}
}

// Name returns the channel name
func (w *WebhookNotifier) Name() string { return string(KindWebhook) }

// Send posts the payload to every configured URL.
func (w *WebhookNotifier) Send(ctx context.Context, p Payload) SendResult {
	target := strings.Join(w.config.URLs, ",")

	body, err := json.Marshal(p)
	if err != nil {
		return SendResult{
			Channel: w.Name(),
			Target:  target,
			Error:   w.scrub(fmt.Sprintf("encode payload: %v", err)),
		}
	}

	// Every URL is posted on every attempt, even after an earlier URL
	// fails; a failure only fails the attempt once all targets were tried.
	var errs []string
	for _, url := range w.config.URLs {
		if err := w.post(ctx, url, body); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", url, err))
		}
	}
	if len(errs) > 0 {
		return SendResult{
			Channel: w.Name(),
			Target:  target,
			Error:   w.scrub(strings.Join(errs, "; ")),
		}
	}

	return SendResult{Channel: w.Name(), Target: target, Ok: true}
}

// post issues one HTTP POST and treats any non-2xx status as a failure.
func (w *WebhookNotifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

// scrub removes configured header values from error text. Custom headers
// commonly carry bearer tokens or API keys.
func (w *WebhookNotifier) scrub(s string) string {
	secrets := make([]string, 0, len(w.config.Headers))
	for _, v := range w.config.Headers {
		secrets = append(secrets, v)
	}
	return Scrub(s, secrets...)
}
