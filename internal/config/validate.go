package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/davetashner/sonarstep/internal/log"
	"github.com/davetashner/sonarstep/internal/output"
)

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.OutputFormat != "" {
		if _, err := output.GetFormatter(cfg.OutputFormat); err != nil {
			errs = append(errs, fmt.Sprintf("output_format: %v", err))
		}
	}

	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("base_url: %v", err))
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, fmt.Sprintf("base_url: scheme must be http or https, got %q", cfg.BaseURL))
		case u.Host == "":
			errs = append(errs, fmt.Sprintf("base_url: missing host in %q", cfg.BaseURL))
		}
	}

	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("timeout: invalid duration %q", cfg.Timeout))
		case d < 0:
			errs = append(errs, fmt.Sprintf("timeout: must be non-negative, got %s", cfg.Timeout))
		}
	}

	if !log.ValidFormat(cfg.LogFormat) {
		errs = append(errs, fmt.Sprintf("log_format: invalid value %q (must be text or json)", cfg.LogFormat))
	}

	if cfg.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
			errs = append(errs, fmt.Sprintf("listen: %v", err))
		}
	}

	if cfg.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("concurrency: must be non-negative, got %d", cfg.Concurrency))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
