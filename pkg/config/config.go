package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	FineDailyRate             int64         `koanf:"fine_daily_rate"`
	Hostname                  string        `koanf:"-"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
}

const (
	configFileENV = "KASHIDASHI_CONFIG"
	envPrefix     = "KASHIDASHI_"
)

// New loads the configuration in three layers: built-in defaults, an optional
// YAML config file (KASHIDASHI_CONFIG, falling back to ./kashidashi.yaml if it
// exists), and KASHIDASHI_* environment variables.
func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseFilePath:          "./tmp/data.sqlite",
		DatabaseMaxRetries:        3,
		FineDailyRate:             10,
		Hostname:                  hostname,
		ServerHost:                "127.0.0.1",
		ServerPort:                4110,
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		if _, err := os.Stat("kashidashi.yaml"); err == nil {
			path = "kashidashi.yaml"
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file: %s", path)
		}
	}

	err = k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// KASHIDASHI_SERVER_PORT -> server_port
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	return cfg, nil
}
