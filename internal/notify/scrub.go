package notify

import "strings"

// redacted replaces secret material in error text
const redacted = "[redacted]"

// Scrub removes every occurrence of the given secrets from s. Empty secrets
// are ignored. Every error string that may have touched credentials must
// pass through here before being stored in a SendResult or logged.
func Scrub(s string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}
