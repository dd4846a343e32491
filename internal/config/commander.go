package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Commander is the commander process's configuration (§6).
type Commander struct {
	BasePort      uint16 `toml:"base_port"`
	TestDir       string `toml:"test_dir"`
	CommonDir     string `toml:"common_dir"`
	TestTimeout   uint32 `toml:"test_timeout"`
	ClientTimeout uint32 `toml:"client_timeout"`
	CommandFile   string `toml:"command_file"`
	NATSUrl       string `toml:"nats_url"`
	ResultsDir    string `toml:"results_dir"`
	LogLevel      string `toml:"log_level"`
}

// LoadCommander reads a TOML configuration file at path, then overlays any
// matching GRADECLUSTER_* environment variables (optionally loaded from a
// sibling .env file, if present — a missing .env is not an error).
func LoadCommander(path string) (*Commander, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Commander{
		NATSUrl:    "nats://127.0.0.1:4222",
		ResultsDir: "./results",
		LogLevel:   "info",
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	_ = godotenv.Overload() // best-effort; deployment overrides are optional
	overlayEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayEnv(cfg *Commander) {
	if v := os.Getenv("GRADECLUSTER_NATS_URL"); v != "" {
		cfg.NATSUrl = v
	}
	if v := os.Getenv("GRADECLUSTER_RESULTS_DIR"); v != "" {
		cfg.ResultsDir = v
	}
	if v := os.Getenv("GRADECLUSTER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func (c *Commander) validate() error {
	if c.BasePort == 0 {
		return fmt.Errorf("config: base_port is required")
	}
	if c.TestDir == "" {
		return fmt.Errorf("config: test_dir is required")
	}
	if c.CommandFile == "" {
		return fmt.Errorf("config: command_file is required")
	}
	if c.ClientTimeout == 0 {
		return fmt.Errorf("config: client_timeout must be positive")
	}
	return nil
}
