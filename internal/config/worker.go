package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Worker is the worker process's configuration (§6).
type Worker struct {
	RemotePort uint16 `toml:"remote_port"`
	RemoteIP   string `toml:"remote_ip"`
	TestDir    string `toml:"test_dir"`
	NATSUrl    string `toml:"nats_url"`
	LogLevel   string `toml:"log_level"`
}

// LoadWorker reads a TOML configuration file at path with the same .env
// overlay convention as LoadCommander.
func LoadWorker(path string) (*Worker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Worker{
		TestDir:  "./tests",
		NATSUrl:  "nats://127.0.0.1:4222",
		LogLevel: "info",
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	_ = godotenv.Overload()
	if v := os.Getenv("GRADECLUSTER_NATS_URL"); v != "" {
		cfg.NATSUrl = v
	}
	if v := os.Getenv("GRADECLUSTER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Worker) validate() error {
	if c.RemotePort == 0 {
		return fmt.Errorf("config: remote_port is required")
	}
	if c.RemoteIP == "" {
		return fmt.Errorf("config: remote_ip is required")
	}
	return nil
}
