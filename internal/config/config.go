// Package config resolves the jobdone configuration from defaults,
// JOBDONE_* environment variables, YAML config files, and CLI flag
// overrides, in ascending precedence (CLI > YAML > ENV > defaults).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ariel-frischer/jobdone/internal/notify"
)

// Configuration is the fully resolved jobdone configuration for one run.
// Retry, backoff, and timeout are global; Webhook and Email carry the
// per-channel connection parameters.
type Configuration struct {
	Channels        []string             `koanf:"channels" validate:"dive,oneof=webhook email desktop"`
	On              string               `koanf:"on" validate:"oneof=success failure always"`
	Retries         int                  `koanf:"retries" validate:"min=0,max=100"`
	Backoff         float64              `koanf:"backoff" validate:"min=0"`
	Timeout         float64              `koanf:"timeout" validate:"gt=0"`
	BackoffStrategy string               `koanf:"backoff_strategy" validate:"oneof=linear exponential"`
	Webhook         notify.WebhookConfig `koanf:"webhook"`
	Email           notify.EmailConfig   `koanf:"email"`
}

// RetrySpec converts the resolved retry fields into the engine's policy
// value. Backoff and timeout are configured in seconds.
func (c *Configuration) RetrySpec() notify.RetrySpec {
	return notify.RetrySpec{
		MaxRetries: c.Retries,
		Backoff:    time.Duration(c.Backoff * float64(time.Second)),
		Timeout:    time.Duration(c.Timeout * float64(time.Second)),
		Strategy:   notify.BackoffStrategy(c.BackoffStrategy),
	}
}

// Load resolves the configuration. configPath is the explicit --config file
// (may be empty); overrides holds the dotted keys set by changed CLI flags
// and wins over every other source.
func Load(configPath string, overrides map[string]interface{}) (*Configuration, error) {
	k := koanf.New(".")

	// Apply defaults first
	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
	}

	// Environment variables sit below the config files, matching the
	// original merge order (CLI > YAML > ENV)
	if err := k.Load(env.ProviderWithValue("JOBDONE_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// YAML files, later files overriding earlier ones
	fileCfg, err := loadFiles(configPath)
	if err != nil {
		return nil, err
	}
	if err := k.Merge(fileCfg); err != nil {
		return nil, fmt.Errorf("failed to merge config files: %w", err)
	}

	// Changed CLI flags win over everything
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to apply flag overrides: %w", err)
		}
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// SearchPaths returns the YAML config files probed for one run, in load
// order. Later files override earlier ones; the explicit --config path is
// probed first.
func SearchPaths(configPath string) []string {
	var paths []string
	if configPath != "" {
		paths = append(paths, expandHomePath(configPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "jobdone", "config.yaml"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths,
			filepath.Join(cwd, ".jobdone.yaml"),
			filepath.Join(cwd, "jobdone.yaml"),
			filepath.Join(cwd, "config.yaml"),
		)
	}
	return paths
}

// loadFiles merges the existing config files into a fresh koanf instance and
// resolves the `default:` block before the result is merged into the main
// configuration.
func loadFiles(configPath string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	for _, path := range SearchPaths(configPath) {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}
	applyDefaultBlock(k)
	return k, nil
}

// applyDefaultBlock fills unset top-level keys from the `default:` mapping,
// then drops the block itself.
func applyDefaultBlock(k *koanf.Koanf) {
	defaults, ok := k.Get("default").(map[string]interface{})
	if !ok {
		return
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			_ = k.Set(key, value)
		}
	}
	k.Delete("default")
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
