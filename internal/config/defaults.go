package config

// GetDefaults returns the default configuration values as dotted koanf keys.
// Retry defaults match the CLI defaults: no retries, 2s base backoff, 10s
// per-attempt timeout.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"on":               "always",
		"retries":          0,
		"backoff":          2.0,
		"timeout":          10.0,
		"backoff_strategy": "linear",
		"email.smtp_port":  587,
	}
}
