// Package config loads radiosync configuration from a YAML file. A missing
// file is not an error; every field has a default so the tool runs against
// the dashboard's toggle with no configuration at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"radiosync/internal/browser"
	"radiosync/internal/style"
	"radiosync/internal/toggle"
)

// Config is the parsed, validated configuration.
type Config struct {
	Toggle  toggle.Config
	Style   style.Sheet
	Browser browser.Config
	Logging LoggingConfig
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// file is the on-disk shape. Durations are strings ("100ms", "2s") so the
// file reads naturally; Load parses them with per-field fallbacks.
type file struct {
	Toggle struct {
		ContainerSelector string `yaml:"container_selector"`
		Group             string `yaml:"group"`
		LocateInterval    string `yaml:"locate_interval"`
		MaxLocateAttempts *int   `yaml:"max_locate_attempts"`
		DebounceDelay     string `yaml:"debounce_delay"`
		RebindDelay       string `yaml:"rebind_delay"`
		WatchInterval     string `yaml:"watch_interval"`
	} `yaml:"toggle"`
	Style   *style.Sheet   `yaml:"style"`
	Browser browser.Config `yaml:"browser"`
	Logging LoggingConfig  `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Toggle:  toggle.DefaultConfig(),
		Style:   style.Default(),
		Browser: browser.DefaultConfig(),
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path and merges it over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f file
	f.Browser = cfg.Browser
	f.Logging = cfg.Logging
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if f.Toggle.ContainerSelector != "" {
		cfg.Toggle.ContainerSelector = f.Toggle.ContainerSelector
	}
	if f.Toggle.Group != "" {
		cfg.Toggle.Group = f.Toggle.Group
	}
	if f.Toggle.MaxLocateAttempts != nil {
		cfg.Toggle.MaxLocateAttempts = *f.Toggle.MaxLocateAttempts
	}
	if err := mergeDuration(&cfg.Toggle.LocateInterval, f.Toggle.LocateInterval, "locate_interval"); err != nil {
		return cfg, err
	}
	if err := mergeDuration(&cfg.Toggle.DebounceDelay, f.Toggle.DebounceDelay, "debounce_delay"); err != nil {
		return cfg, err
	}
	if err := mergeDuration(&cfg.Toggle.RebindDelay, f.Toggle.RebindDelay, "rebind_delay"); err != nil {
		return cfg, err
	}
	if err := mergeDuration(&cfg.Toggle.WatchInterval, f.Toggle.WatchInterval, "watch_interval"); err != nil {
		return cfg, err
	}
	if f.Style != nil {
		cfg.Style = mergeSheet(cfg.Style, *f.Style)
	}
	cfg.Browser = f.Browser
	cfg.Logging = f.Logging

	if err := cfg.Toggle.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func mergeDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", field, err)
	}
	*dst = d
	return nil
}

// mergeSheet overlays a partial sheet from the file; unset palettes keep
// their defaults so a file can recolor just one option.
func mergeSheet(base, over style.Sheet) style.Sheet {
	out := base
	if over.Base != (style.Palette{}) {
		out.Base = over.Base
	}
	if over.Fallback != (style.Palette{}) {
		out.Fallback = over.Fallback
	}
	if len(over.Checked) > 0 {
		merged := make(map[string]style.Palette, len(base.Checked)+len(over.Checked))
		for k, v := range base.Checked {
			merged[k] = v
		}
		for k, v := range over.Checked {
			merged[k] = v
		}
		out.Checked = merged
	}
	return out
}
