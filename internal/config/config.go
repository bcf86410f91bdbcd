package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv string

	HTTPAddr string

	// KudaGo public API
	KudaGoBaseURL   string
	DefaultLang     string
	DefaultLocation string
	UpstreamTimeout time.Duration

	// Redis & Caching
	RedisURL         string
	CacheTTLUpstream time.Duration

	// Bookmarks are disabled when DatabaseURL is empty.
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string

	// RabbitMQ
	RabbitURL      string
	RabbitExchange string

	// Scheduled feed refresh; empty RefreshCron disables it.
	RefreshCron      string
	RefreshLocations []string

	// Rate Limiting
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration
}

// Load reads .env (when present) and the process environment. Every
// validation problem is reported at once.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8086"),

		KudaGoBaseURL:   strings.TrimRight(getEnv("KUDAGO_BASE_URL", "https://kudago.com"), "/"),
		DefaultLang:     strings.ToLower(getEnv("DEFAULT_LANG", "ru")),
		DefaultLocation: getEnv("DEFAULT_LOCATION", "msk"),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 5*time.Second),

		RedisURL:         getEnv("REDIS_URL", ""),
		CacheTTLUpstream: getDuration("CACHE_TTL_UPSTREAM", 2*time.Minute),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", ""),

		RabbitURL:      getEnv("RABBIT_URL", ""),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "city.events"),

		RefreshCron: getEnv("REFRESH_CRON", "*/10 * * * *"),

		RLEnabled: getEnv("RL_ENABLED", "true") == "true",
		RLLimit:   getIntEnv("RL_IP_LIMIT", 100),
		RLWindow:  getDuration("RL_IP_WINDOW", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		HTTPReadTimeout:  getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second),
		HTTPIdleTimeout:  getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	cfg.RefreshLocations = getListEnv("REFRESH_LOCATIONS", []string{cfg.DefaultLocation})

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DefaultLang != "ru" && c.DefaultLang != "en" {
		errs = append(errs, fmt.Errorf("invalid DEFAULT_LANG %q (want ru or en)", c.DefaultLang))
	}
	if u, err := url.Parse(c.KudaGoBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid KUDAGO_BASE_URL %q (want scheme://host)", c.KudaGoBaseURL))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.RLEnabled && (c.RLLimit <= 0 || c.RLWindow <= 0) {
		errs = append(errs, errors.New("RL_IP_LIMIT and RL_IP_WINDOW must be positive when RL_ENABLED"))
	}
	if c.DatabaseURL != "" && c.JWTSecret == "" {
		errs = append(errs, errors.New("missing JWT_SECRET (required when DATABASE_URL is set)"))
	}
	if c.AppEnv != "dev" && c.RabbitURL == "" {
		errs = append(errs, errors.New("missing RABBIT_URL (required when APP_ENV != dev)"))
	}
	return errors.Join(errs...)
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		zlog.Warn().Str("key", key).Str("value", v).Dur("default", def).Msg("unparsable duration, using default")
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		zlog.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("unparsable integer, using default")
		return def
	}
	return i
}

// getListEnv splits a comma separated value, dropping blanks.
func getListEnv(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
