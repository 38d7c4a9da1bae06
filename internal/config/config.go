package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	RemoteBaseURL string
	RemoteAPIKey  string
	RemoteTimeout time.Duration

	AllowedMediaTypes []string
	MaxUploadBytes    int64

	PollInterval time.Duration
	PollTimeout  time.Duration

	NATSURL              string
	NATSSubjectPrefix    string
	InvalidationCoalesce time.Duration

	PostgresDSN  string
	HistoryLimit int

	APIRateLimitRPS   float64
	APIRateLimitBurst int
}

// fileConfig mirrors Config for the optional YAML overlay. Environment
// variables win over file values, file values win over defaults.
type fileConfig struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	RemoteBaseURL  string `yaml:"remote_base_url"`
	RemoteAPIKey   string `yaml:"remote_api_key"`
	RemoteTimeoutS int    `yaml:"remote_timeout_seconds"`

	AllowedMediaTypes []string `yaml:"allowed_media_types"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`

	PollIntervalMS int `yaml:"poll_interval_ms"`
	PollTimeoutS   int `yaml:"poll_timeout_seconds"`

	NATSURL                string `yaml:"nats_url"`
	NATSSubjectPrefix      string `yaml:"nats_subject_prefix"`
	InvalidationCoalesceMS int    `yaml:"invalidation_coalesce_ms"`

	PostgresDSN  string `yaml:"postgres_dsn"`
	HistoryLimit int    `yaml:"history_limit"`

	APIRateLimitRPS   float64 `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst int     `yaml:"api_rate_limit_burst"`
}

func Load() Config {
	cfg := defaults()
	applyFile(&cfg)
	applyEnv(&cfg)
	return cfg
}

func defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		RemoteBaseURL: "http://localhost:9000",
		RemoteTimeout: 2 * time.Minute,

		MaxUploadBytes: 10 << 20,

		PollInterval: 500 * time.Millisecond,
		PollTimeout:  2 * time.Minute,

		NATSSubjectPrefix:    "cache.invalidate",
		InvalidationCoalesce: 0,

		HistoryLimit: 500,

		APIRateLimitRPS:   20,
		APIRateLimitBurst: 40,
	}
}

func applyFile(cfg *Config) {
	path := os.Getenv("DOCSTREAM_CONFIG_FILE")
	if path == "" {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return
	}

	setString(&cfg.APIPort, fc.APIPort)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.RemoteBaseURL, fc.RemoteBaseURL)
	setString(&cfg.RemoteAPIKey, fc.RemoteAPIKey)
	if fc.RemoteTimeoutS > 0 {
		cfg.RemoteTimeout = time.Duration(fc.RemoteTimeoutS) * time.Second
	}
	if len(fc.AllowedMediaTypes) > 0 {
		cfg.AllowedMediaTypes = fc.AllowedMediaTypes
	}
	if fc.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = fc.MaxUploadBytes
	}
	if fc.PollIntervalMS > 0 {
		cfg.PollInterval = time.Duration(fc.PollIntervalMS) * time.Millisecond
	}
	if fc.PollTimeoutS > 0 {
		cfg.PollTimeout = time.Duration(fc.PollTimeoutS) * time.Second
	}
	setString(&cfg.NATSURL, fc.NATSURL)
	setString(&cfg.NATSSubjectPrefix, fc.NATSSubjectPrefix)
	if fc.InvalidationCoalesceMS > 0 {
		cfg.InvalidationCoalesce = time.Duration(fc.InvalidationCoalesceMS) * time.Millisecond
	}
	setString(&cfg.PostgresDSN, fc.PostgresDSN)
	if fc.HistoryLimit > 0 {
		cfg.HistoryLimit = fc.HistoryLimit
	}
	if fc.APIRateLimitRPS > 0 {
		cfg.APIRateLimitRPS = fc.APIRateLimitRPS
	}
	if fc.APIRateLimitBurst > 0 {
		cfg.APIRateLimitBurst = fc.APIRateLimitBurst
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.APIPort, os.Getenv("API_PORT"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&cfg.RemoteBaseURL, os.Getenv("REMOTE_BASE_URL"))
	setString(&cfg.RemoteAPIKey, os.Getenv("REMOTE_API_KEY"))
	if v := envInt("REMOTE_TIMEOUT_SECONDS"); v > 0 {
		cfg.RemoteTimeout = time.Duration(v) * time.Second
	}
	if v := os.Getenv("ALLOWED_MEDIA_TYPES"); v != "" {
		cfg.AllowedMediaTypes = splitList(v)
	}
	if v := envInt64("MAX_UPLOAD_BYTES"); v > 0 {
		cfg.MaxUploadBytes = v
	}
	if v := envInt("POLL_INTERVAL_MS"); v > 0 {
		cfg.PollInterval = time.Duration(v) * time.Millisecond
	}
	if v := envInt("POLL_TIMEOUT_SECONDS"); v > 0 {
		cfg.PollTimeout = time.Duration(v) * time.Second
	}
	setString(&cfg.NATSURL, os.Getenv("NATS_URL"))
	setString(&cfg.NATSSubjectPrefix, os.Getenv("NATS_SUBJECT_PREFIX"))
	if v := envInt("INVALIDATION_COALESCE_MS"); v > 0 {
		cfg.InvalidationCoalesce = time.Duration(v) * time.Millisecond
	}
	setString(&cfg.PostgresDSN, os.Getenv("POSTGRES_DSN"))
	if v := envInt("HISTORY_LIMIT"); v > 0 {
		cfg.HistoryLimit = v
	}
	if v := envFloat("API_RATE_LIMIT_RPS"); v > 0 {
		cfg.APIRateLimitRPS = v
	}
	if v := envInt("API_RATE_LIMIT_BURST"); v > 0 {
		cfg.APIRateLimitBurst = v
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envInt64(key string) int64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
