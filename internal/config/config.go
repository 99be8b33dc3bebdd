package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Readings struct {
		Dir string `yaml:"dir"`
	} `yaml:"readings"`
	Progress struct {
		File string `yaml:"file"`
	} `yaml:"progress"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	Client struct {
		BaseURL string `yaml:"base_url"`
		Level   string `yaml:"level"`
		Timeout string `yaml:"timeout"`
	} `yaml:"client"`
}

// Load reads YAML config from path. A missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Readings.Dir == "" {
		c.Readings.Dir = "readings"
	}
	if c.Progress.File == "" {
		c.Progress.File = "usersdata/user_performance.json"
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://127.0.0.1:5000/api"
	}
	if c.Client.Level == "" {
		c.Client.Level = "a1"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
