package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files can say "30s" or "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	HTTPPort      string `yaml:"http_port"`
	DatabasePath  string `yaml:"database_path"`
	MigrationsDir string `yaml:"migrations_dir"`
	// Empty means carts live in process memory instead of Redis.
	RedisAddr   string `yaml:"redis_addr"`
	UploadsDir  string `yaml:"uploads_dir"`
	CountryCode string `yaml:"country_code"`
	Locale      string `yaml:"locale"`

	SessionTTL      Duration `yaml:"session_ttl"`
	RequestTimeout  Duration `yaml:"request_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

func Default() *Config {
	return &Config{
		HTTPPort:        "8080",
		DatabasePath:    "qrmenu.db",
		MigrationsDir:   "migrations",
		UploadsDir:      "uploads",
		CountryCode:     "964",
		Locale:          "ar-IQ",
		SessionTTL:      Duration(7 * 24 * time.Hour),
		RequestTimeout:  Duration(30 * time.Second),
		ShutdownTimeout: Duration(10 * time.Second),
	}
}

// Load reads the optional YAML file, then lets environment variables win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	overrideEnv(&cfg.HTTPPort, "HTTP_PORT")
	overrideEnv(&cfg.DatabasePath, "DATABASE_PATH")
	overrideEnv(&cfg.MigrationsDir, "MIGRATIONS_DIR")
	overrideEnv(&cfg.RedisAddr, "REDIS_ADDR")
	overrideEnv(&cfg.UploadsDir, "UPLOADS_DIR")
	overrideEnv(&cfg.CountryCode, "COUNTRY_CODE")
	overrideEnv(&cfg.Locale, "LOCALE")

	return cfg, nil
}

func overrideEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}
