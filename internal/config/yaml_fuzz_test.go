package config

import (
	"testing"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

func FuzzConfigParse(f *testing.F) {
	f.Add([]byte("output_format: json\ntimeout: 30s\n"))
	f.Add([]byte(""))
	f.Add([]byte("---"))
	f.Add([]byte("base_url = \"http://localhost\"\n"))
	f.Add([]byte("{invalid"))

	f.Fuzz(func(t *testing.T, data []byte) {
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			yaml.Marshal(&cfg) //nolint:errcheck,gosec // fuzz: testing crash-freedom
		}
		var tcfg Config
		if err := toml.Unmarshal(data, &tcfg); err == nil {
			_ = Validate(&tcfg)
		}
	})
}
