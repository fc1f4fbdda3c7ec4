package conf

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/pkg/errors"
)

type RemoteConfig struct {
	BaseURL        string `json:"base_url" env:"DEVICEGATE_REMOTE_URL"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"DEVICEGATE_REMOTE_TIMEOUT"`
	Platform       string `json:"platform" env:"DEVICEGATE_PLATFORM"`
}

type PollConfig struct {
	IntervalMs        int `json:"interval_ms" env:"DEVICEGATE_POLL_INTERVAL_MS"`
	CountdownMs       int `json:"countdown_ms" env:"DEVICEGATE_COUNTDOWN_MS"`
	RevokeLockMinutes int `json:"revoke_lock_minutes" env:"DEVICEGATE_REVOKE_LOCK_MINUTES"`
}

type DatabaseConfig struct {
	File string `json:"file" env:"DEVICEGATE_DB_FILE"`
}

type LogConfig struct {
	Enable     bool   `json:"enable" env:"DEVICEGATE_LOG_ENABLE"`
	Name       string `json:"name" env:"DEVICEGATE_LOG_NAME"`
	MaxSize    int    `json:"max_size" env:"DEVICEGATE_LOG_MAX_SIZE"`
	MaxBackups int    `json:"max_backups" env:"DEVICEGATE_LOG_MAX_BACKUPS"`
	MaxAge     int    `json:"max_age" env:"DEVICEGATE_LOG_MAX_AGE"`
	Compress   bool   `json:"compress" env:"DEVICEGATE_LOG_COMPRESS"`
}

type LoginConfig struct {
	PhonePrefixes []string `json:"phone_prefixes" env:"DEVICEGATE_PHONE_PREFIXES" envSeparator:","`
}

type Config struct {
	Address  string         `json:"address" env:"DEVICEGATE_ADDR"`
	Remote   RemoteConfig   `json:"remote"`
	Poll     PollConfig     `json:"poll"`
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
	Login    LoginConfig    `json:"login"`
}

func DefaultConfig(dataDir string) *Config {
	return &Config{
		Address: "127.0.0.1:5246",
		Remote: RemoteConfig{
			BaseURL:        "http://127.0.0.1:8080/api",
			TimeoutSeconds: 10,
			Platform:       "web",
		},
		Poll: PollConfig{
			IntervalMs:        2000,
			CountdownMs:       1000,
			RevokeLockMinutes: 30,
		},
		Database: DatabaseConfig{
			File: filepath.Join(dataDir, "devicegate.db"),
		},
		Log: LogConfig{
			Enable:     true,
			Name:       filepath.Join(dataDir, "log", "devicegate.log"),
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     28,
		},
		Login: LoginConfig{
			PhonePrefixes: []string{"+998", "+7"},
		},
	}
}

// Load reads the JSON config file (creating it with defaults when absent) and
// applies environment overrides on top.
func Load(dataDir, file string) (*Config, error) {
	cfg := DefaultConfig(dataDir)
	if file == "" {
		file = filepath.Join(dataDir, "config.json")
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := utils.Json.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		if werr := write(file, cfg); werr != nil {
			utils.Log.Warnf("failed to write default config: %+v", werr)
		}
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config from env")
	}
	return cfg, nil
}

func write(file string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return errors.WithStack(err)
	}
	data, err := utils.Json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(file, data, 0o644))
}
