package config

import (
	"strconv"
	"strings"
)

// envKeys maps JOBDONE_* variable suffixes to dotted config keys. The
// mapping is explicit because the variable names don't encode nesting
// (JOBDONE_SMTP_HOST targets email.smtp_host).
var envKeys = map[string]string{
	"CHANNELS":     "channels",
	"WEBHOOK_URLS": "webhook.urls",
	"EMAIL_TO":     "email.to",
	"SMTP_HOST":    "email.smtp_host",
	"SMTP_PORT":    "email.smtp_port",
	"SMTP_USER":    "email.smtp_user",
	"SMTP_PASS":    "email.smtp_pass",
	"EMAIL_FROM":   "email.from",
	"ON":           "on",
	"RETRIES":      "retries",
	"BACKOFF":      "backoff",
	"TIMEOUT":      "timeout",
}

// listKeys are comma-separated in the environment
var listKeys = map[string]bool{
	"channels":     true,
	"webhook.urls": true,
	"email.to":     true,
}

// envTransform converts a JOBDONE_* environment variable into a config key
// and a typed value. Unknown variables and unparseable numeric values are
// ignored (empty key skips the variable).
func envTransform(name, value string) (string, interface{}) {
	key, ok := envKeys[strings.TrimPrefix(name, "JOBDONE_")]
	if !ok {
		return "", nil
	}

	if listKeys[key] {
		return key, splitList(value)
	}

	switch key {
	case "email.smtp_port", "retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", nil
		}
		return key, n
	case "backoff", "timeout":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", nil
		}
		return key, f
	default:
		return key, value
	}
}

// splitList splits a comma-separated value, trimming whitespace and dropping
// empty items.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
