package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr           string `json:"addr" yaml:"addr" toml:"addr"`
	StateFile      string `json:"state_file" yaml:"state_file" toml:"state_file"`
	SettleMs       int    `json:"settle_ms" yaml:"settle_ms" toml:"settle_ms"`
	PollMs         int    `json:"poll_ms" yaml:"poll_ms" toml:"poll_ms"`
	AttachRetryMs  int    `json:"attach_retry_ms" yaml:"attach_retry_ms" toml:"attach_retry_ms"`
	DebuggerURL    string `json:"debugger_url" yaml:"debugger_url" toml:"debugger_url"`
	ChromeBin      string `json:"chrome_bin" yaml:"chrome_bin" toml:"chrome_bin"`
	Headless       bool   `json:"headless" yaml:"headless" toml:"headless"`
	PageURL        string `json:"page_url" yaml:"page_url" toml:"page_url"`
	InputSelector  string `json:"input_selector" yaml:"input_selector" toml:"input_selector"`
	SubmitSelector string `json:"submit_selector" yaml:"submit_selector" toml:"submit_selector"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
