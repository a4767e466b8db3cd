package config

import (
	"errors"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Capture struct {
		Exchange    string   `toml:"exchange"`
		Pairs       []string `toml:"pairs"`
		Depth       int      `toml:"depth"`
		IntervalMs  int      `toml:"interval_ms"`
		DurationMin int      `toml:"duration_min"`
	} `toml:"capture"`

	Funding struct {
		PayoutHours int `toml:"payout_hours"`
	} `toml:"funding"`

	Exchange struct {
		Binance struct {
			Enabled bool    `toml:"enabled"`
			RestURL string  `toml:"rest_url"`
			WsURL   string  `toml:"ws_url"`
			RPS     float64 `toml:"rps"`
		} `toml:"binance"`

		Bybit struct {
			Enabled bool    `toml:"enabled"`
			RestURL string  `toml:"rest_url"`
			RPS     float64 `toml:"rps"`
		} `toml:"bybit"`
	} `toml:"exchange"`

	Storage struct {
		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`

		Redis struct {
			Enabled bool   `toml:"enabled"`
			Addr    string `toml:"addr"`
			Prefix  string `toml:"prefix"`
			TTLSec  int    `toml:"ttl_sec"`
		} `toml:"redis"`

		S3 struct {
			Enabled   bool   `toml:"enabled"`
			Bucket    string `toml:"bucket"`
			Region    string `toml:"region"`
			Prefix    string `toml:"prefix"`
			Endpoint  string `toml:"endpoint"`
			PathStyle bool   `toml:"path_style"`
		} `toml:"s3"`
	} `toml:"storage"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CaptureInterval returns the snapshot interval as a duration.
func (c *Config) CaptureInterval() time.Duration {
	return time.Duration(c.Capture.IntervalMs) * time.Millisecond
}

// CaptureDuration returns the total capture run length; zero means
// unbounded.
func (c *Config) CaptureDuration() time.Duration {
	return time.Duration(c.Capture.DurationMin) * time.Minute
}

// RedisTTL returns the quote cache TTL.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Storage.Redis.TTLSec) * time.Second
}

func applyDefaults(cfg *Config) {
	if cfg.Capture.Depth <= 0 {
		cfg.Capture.Depth = 100
	}
	if cfg.Capture.IntervalMs <= 0 {
		cfg.Capture.IntervalMs = 1000
	}
	if cfg.Funding.PayoutHours <= 0 {
		cfg.Funding.PayoutHours = 8
	}
	if cfg.Exchange.Binance.RPS <= 0 {
		cfg.Exchange.Binance.RPS = 5
	}
	if cfg.Exchange.Bybit.RPS <= 0 {
		cfg.Exchange.Bybit.RPS = 5
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "xliq"
	}
	if cfg.Storage.Redis.TTLSec <= 0 {
		cfg.Storage.Redis.TTLSec = 5
	}
	if cfg.Storage.S3.Prefix == "" {
		cfg.Storage.S3.Prefix = "order_books"
	}
}

func validate(cfg *Config) error {
	cfg.Capture.Pairs = normalizePairs(cfg.Capture.Pairs)
	if len(cfg.Capture.Pairs) == 0 {
		return errors.New("capture.pairs is empty")
	}
	cfg.Capture.Exchange = strings.ToLower(strings.TrimSpace(cfg.Capture.Exchange))
	if cfg.Capture.Exchange == "" {
		return errors.New("capture.exchange is empty")
	}

	if !cfg.Exchange.Binance.Enabled && !cfg.Exchange.Bybit.Enabled {
		return errors.New("no exchange enabled")
	}
	if cfg.Storage.S3.Enabled && strings.TrimSpace(cfg.Storage.S3.Bucket) == "" {
		return errors.New("storage.s3.bucket empty but enabled")
	}
	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}
	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}
	return nil
}

func normalizePairs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
