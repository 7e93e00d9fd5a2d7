// Package config handles .sonarstep.yaml and .sonarstep.toml configuration
// files.
package config

// Config represents the contents of a sonarstep configuration file. Every
// field is optional; zero values fall through to global config and then to
// built-in defaults.
type Config struct {
	BaseURL      string `yaml:"base_url,omitempty" toml:"base_url,omitempty"`
	PersonaFile  string `yaml:"persona_file,omitempty" toml:"persona_file,omitempty"`
	OutputFormat string `yaml:"output_format,omitempty" toml:"output_format,omitempty"`
	Timeout      string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	LogFormat    string `yaml:"log_format,omitempty" toml:"log_format,omitempty"`
	Listen       string `yaml:"listen,omitempty" toml:"listen,omitempty"`
	Concurrency  int    `yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`
}

// FileName is the expected YAML config file name in the working directory.
const FileName = ".sonarstep.yaml"

// TOMLFileName is the alternative TOML config file name. It is only read
// when FileName is absent.
const TOMLFileName = ".sonarstep.toml"
