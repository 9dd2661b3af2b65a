package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"port"`
	DBDriver       string        `mapstructure:"db_driver"`
	DBSource       string        `mapstructure:"db_source"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl"`
	LogLevel       string        `mapstructure:"log_level"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	AdminEmail     string        `mapstructure:"admin_email"`
	AdminPassword  string        `mapstructure:"admin_password"`

	Redis  RedisConfig
	Lmstfy LmstfyConfig
	Notify NotifyConfig
	Client ClientConfig
}

// RedisConfig enables cross-instance realtime fan-out when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

// LmstfyConfig moves notification writes onto a queue when Host is set.
type LmstfyConfig struct {
	Host      string        `mapstructure:"lmstfy_host"`
	Port      int           `mapstructure:"lmstfy_port"`
	Namespace string        `mapstructure:"lmstfy_namespace"`
	Token     string        `mapstructure:"lmstfy_token"`
	Queue     string        `mapstructure:"lmstfy_queue"`
	TTR       time.Duration `mapstructure:"lmstfy_ttr"`
	Timeout   time.Duration `mapstructure:"lmstfy_timeout"`
	Threads   int           `mapstructure:"lmstfy_threads"`
}

func (c LmstfyConfig) Enabled() bool { return c.Host != "" }

type NotifyConfig struct {
	PollInterval time.Duration `mapstructure:"notify_poll_interval"`
	FeedLimit    int           `mapstructure:"notify_feed_limit"`
}

// ClientConfig is read by the watch/chat commands.
type ClientConfig struct {
	APIBase  string `mapstructure:"api_base"`
	Email    string `mapstructure:"client_email"`
	Password string `mapstructure:"client_password"`
}

var defaults = map[string]any{
	"port":                 "8000",
	"db_driver":            "sqlite",
	"db_source":            "thrift.db",
	"jwt_secret":           "changeme",
	"jwt_ttl":              "24h",
	"log_level":            "info",
	"allowed_origins":      "*",
	"admin_email":          "",
	"admin_password":       "",
	"redis_addr":           "",
	"redis_password":       "",
	"redis_db":             0,
	"lmstfy_host":          "",
	"lmstfy_port":          7777,
	"lmstfy_namespace":     "thrift",
	"lmstfy_token":         "",
	"lmstfy_queue":         "notifications",
	"lmstfy_ttr":           "30s",
	"lmstfy_timeout":       "3s",
	"lmstfy_threads":       2,
	"notify_poll_interval": "10s",
	"notify_feed_limit":    20,
	"api_base":             "http://localhost:8000",
	"client_email":         "",
	"client_password":      "",
}

// LoadConfig reads .env (optional) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env failed: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
		_ = v.BindEnv(k, strings.ToUpper(k))
	}

	cfg := &Config{
		Port:          v.GetString("port"),
		DBDriver:      strings.ToLower(v.GetString("db_driver")),
		DBSource:      v.GetString("db_source"),
		JWTSecret:     v.GetString("jwt_secret"),
		JWTTTL:        v.GetDuration("jwt_ttl"),
		LogLevel:      v.GetString("log_level"),
		AdminEmail:    v.GetString("admin_email"),
		AdminPassword: v.GetString("admin_password"),
	}
	for _, o := range strings.Split(v.GetString("allowed_origins"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if err := v.Unmarshal(&cfg.Redis); err != nil {
		return nil, fmt.Errorf("unmarshal redis config failed: %w", err)
	}
	if err := v.Unmarshal(&cfg.Lmstfy); err != nil {
		return nil, fmt.Errorf("unmarshal lmstfy config failed: %w", err)
	}
	if err := v.Unmarshal(&cfg.Notify); err != nil {
		return nil, fmt.Errorf("unmarshal notify config failed: %w", err)
	}
	if err := v.Unmarshal(&cfg.Client); err != nil {
		return nil, fmt.Errorf("unmarshal client config failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("db_driver must be sqlite or mysql, got %q", c.DBDriver)
	}
	if c.DBSource == "" {
		return fmt.Errorf("db_source is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive")
	}
	if c.Notify.PollInterval <= 0 {
		return fmt.Errorf("notify_poll_interval must be positive")
	}
	if c.Notify.FeedLimit <= 0 {
		return fmt.Errorf("notify_feed_limit must be positive")
	}
	if c.Lmstfy.Enabled() && c.Lmstfy.Queue == "" {
		return fmt.Errorf("lmstfy_queue is required when lmstfy_host is set")
	}
	return nil
}
