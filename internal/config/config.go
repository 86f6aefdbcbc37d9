package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress           string
	UserServiceURL       string
	MenuServiceURL       string
	OrderServiceURL      string
	RequestTimeout       time.Duration
	ProbeTimeout         time.Duration
	HealthPollInterval   time.Duration
	HealthMaxAge         time.Duration
	ShutdownTimeout      time.Duration
	SessionTTL           time.Duration
	JWTSecret            string
	DatabaseURI          string
	RedisAddress         string
	FallbackAccountsFile string
	RecentLimit          int
	RecentUserWindow     time.Duration
	LogLevel             string
	Environment          string
	AllowedOrigins       []string
}

const (
	defaultRunAddress         = ":8080"
	defaultJWTSecret          = "change-me-in-production"
	defaultRequestTimeout     = 5 * time.Second
	defaultProbeTimeout       = 2 * time.Second
	defaultHealthPollInterval = 30 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultSessionTTL         = 24 * time.Hour
	defaultRecentLimit        = 5
	defaultRecentUserWindow   = 7 * 24 * time.Hour
	defaultLogLevel           = "info"
	defaultEnvironment        = "production"
	defaultAllowedOrigins     = "*"
)

// setting binds a config key to its flag and environment variable.
type setting struct {
	key   string
	flag  string
	short string
	env   string
	def   string
	usage string
}

var settings = []setting{
	{"run_address", "run-address", "a", "RUN_ADDRESS", defaultRunAddress, "HTTP server listen address"},
	{"user_service", "user-service", "", "USER_SERVICE_URL", "", "User service base URL"},
	{"menu_service", "menu-service", "", "MENU_SERVICE_URL", "", "Menu service base URL"},
	{"order_service", "order-service", "", "ORDER_SERVICE_URL", "", "Order service base URL"},
	{"request_timeout", "request-timeout", "", "REQUEST_TIMEOUT", defaultRequestTimeout.String(), "Timeout of a single backing service call"},
	{"probe_timeout", "probe-timeout", "", "PROBE_TIMEOUT", defaultProbeTimeout.String(), "Timeout of a single health probe"},
	{"poll_interval", "poll-interval", "", "HEALTH_POLL_INTERVAL", defaultHealthPollInterval.String(), "Interval between health poll cycles"},
	{"health_max_age", "health-max-age", "", "HEALTH_MAX_AGE", "0s", "Age after which a health snapshot is ignored"},
	{"shutdown_timeout", "shutdown-timeout", "", "SHUTDOWN_TIMEOUT", defaultShutdownTimeout.String(), "Graceful shutdown timeout"},
	{"session_ttl", "session-ttl", "", "SESSION_TTL", defaultSessionTTL.String(), "Lifetime of gateway sessions"},
	{"jwt_secret", "jwt-secret", "", "JWT_SECRET", defaultJWTSecret, "Secret for signing session tokens"},
	{"database_uri", "database-uri", "d", "DATABASE_URI", "", "PostgreSQL DSN of the fallback credential store"},
	{"redis_address", "redis", "", "REDIS_ADDRESS", "", "Redis address for sessions and status events"},
	{"fallback_accounts", "fallback-accounts", "", "FALLBACK_ACCOUNTS_FILE", "", "YAML file with fallback accounts"},
	{"recent_limit", "recent-limit", "", "RECENT_LIMIT", "5", "Number of entries in recent lists"},
	{"recent_window", "recent-window", "", "RECENT_USER_WINDOW", defaultRecentUserWindow.String(), "Window of the recent users statistic"},
	{"log_level", "log-level", "", "LOG_LEVEL", defaultLogLevel, "Log level"},
	{"environment", "environment", "", "ENVIRONMENT", defaultEnvironment, "Deployment environment"},
	{"allowed_origins", "allowed-origins", "", "ALLOWED_ORIGINS", defaultAllowedOrigins, "Comma separated CORS origins"},
}

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], viper.New())
}

func load(args []string, v *viper.Viper) (*Config, error) {
	fs := pflag.NewFlagSet("gateway", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	for _, s := range settings {
		fs.StringP(s.flag, s.short, s.def, s.usage)
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	for _, s := range settings {
		if err := v.BindPFlag(s.key, fs.Lookup(s.flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", s.flag, err)
		}
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", s.env, err)
		}
	}

	cfg := &Config{
		RunAddress:           v.GetString("run_address"),
		UserServiceURL:       v.GetString("user_service"),
		MenuServiceURL:       v.GetString("menu_service"),
		OrderServiceURL:      v.GetString("order_service"),
		JWTSecret:            v.GetString("jwt_secret"),
		DatabaseURI:          v.GetString("database_uri"),
		RedisAddress:         v.GetString("redis_address"),
		FallbackAccountsFile: v.GetString("fallback_accounts"),
		RecentLimit:          v.GetInt("recent_limit"),
		LogLevel:             strings.ToLower(v.GetString("log_level")),
		Environment:          strings.ToLower(v.GetString("environment")),
		AllowedOrigins:       splitList(v.GetString("allowed_origins")),
	}

	durations := []struct {
		key    string
		name   string
		target *time.Duration
	}{
		{"request_timeout", "request timeout", &cfg.RequestTimeout},
		{"probe_timeout", "probe timeout", &cfg.ProbeTimeout},
		{"poll_interval", "poll interval", &cfg.HealthPollInterval},
		{"health_max_age", "health max age", &cfg.HealthMaxAge},
		{"shutdown_timeout", "shutdown timeout", &cfg.ShutdownTimeout},
		{"session_ttl", "session ttl", &cfg.SessionTTL},
		{"recent_window", "recent user window", &cfg.RecentUserWindow},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.target = parsed
	}

	if secretFile, ok := os.LookupEnv("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	normalize(cfg)

	for name, raw := range map[string]string{
		"user service":  cfg.UserServiceURL,
		"menu service":  cfg.MenuServiceURL,
		"order service": cfg.OrderServiceURL,
	} {
		if raw == "" {
			return nil, fmt.Errorf("%s address must be provided", name)
		}
		if u, err := url.Parse(raw); err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("%s address must be an absolute URL", name)
		}
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.HealthPollInterval <= 0 {
		cfg.HealthPollInterval = defaultHealthPollInterval
	}
	if cfg.HealthMaxAge <= 0 {
		cfg.HealthMaxAge = 2 * cfg.HealthPollInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	if cfg.RecentUserWindow <= 0 {
		cfg.RecentUserWindow = defaultRecentUserWindow
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{defaultAllowedOrigins}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Development reports whether the service runs in a development environment.
func (c *Config) Development() bool {
	return c.Environment == "development" || c.Environment == "dev"
}
