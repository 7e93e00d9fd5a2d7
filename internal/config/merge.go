package config

import (
	"time"
)

// Settings is the resolved runtime configuration handed to the step hosts.
type Settings struct {
	BaseURL      string
	PersonaFile  string
	OutputFormat string
	Timeout      time.Duration
	LogFormat    string
	Listen       string
	Concurrency  int
}

// Overlay merges global and repo configs. Repo values take precedence; only
// non-zero repo values override global values.
func Overlay(global, repo *Config) *Config {
	merged := *global

	if repo.BaseURL != "" {
		merged.BaseURL = repo.BaseURL
	}
	if repo.PersonaFile != "" {
		merged.PersonaFile = repo.PersonaFile
	}
	if repo.OutputFormat != "" {
		merged.OutputFormat = repo.OutputFormat
	}
	if repo.Timeout != "" {
		merged.Timeout = repo.Timeout
	}
	if repo.LogFormat != "" {
		merged.LogFormat = repo.LogFormat
	}
	if repo.Listen != "" {
		merged.Listen = repo.Listen
	}
	if repo.Concurrency != 0 {
		merged.Concurrency = repo.Concurrency
	}

	return &merged
}

// Merge combines file-based config with CLI-provided Settings.
// CLI values take precedence; zero-value CLI fields fall through to file config.
// An unparsable file timeout is ignored; Validate reports it.
func Merge(fileCfg *Config, cli Settings) Settings {
	result := cli

	if result.BaseURL == "" {
		result.BaseURL = fileCfg.BaseURL
	}
	if result.PersonaFile == "" {
		result.PersonaFile = fileCfg.PersonaFile
	}
	if result.OutputFormat == "" {
		result.OutputFormat = fileCfg.OutputFormat
	}
	if result.Timeout == 0 && fileCfg.Timeout != "" {
		if d, err := time.ParseDuration(fileCfg.Timeout); err == nil && d > 0 {
			result.Timeout = d
		}
	}
	if result.LogFormat == "" {
		result.LogFormat = fileCfg.LogFormat
	}
	if result.Listen == "" {
		result.Listen = fileCfg.Listen
	}
	if result.Concurrency == 0 && fileCfg.Concurrency > 0 {
		result.Concurrency = fileCfg.Concurrency
	}

	return result
}
