package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port               string   `mapstructure:"port"`
	Env                string   `mapstructure:"env"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig selects the record store
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // postgres, sqlite or supabase
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// AuthConfig selects how requests are authenticated
type AuthConfig struct {
	Mode      string `mapstructure:"mode"` // supabase, jwt or header
	JWTSecret string `mapstructure:"jwt_secret"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig selects the cache backend
type CacheConfig struct {
	Driver    string        `mapstructure:"driver"` // redis or memory
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

// AnalyticsConfig tunes the analytics engine
type AnalyticsConfig struct {
	SourceTimeout   time.Duration `mapstructure:"source_timeout"`
	CategoryAverage string        `mapstructure:"category_average"` // running or mean
	CoalesceMisses  bool          `mapstructure:"coalesce_misses"`
	Timezone        string        `mapstructure:"timezone"`
	TTL             TTLConfig     `mapstructure:"ttl"`
	Refresh         RefreshConfig `mapstructure:"refresh"`
}

// TTLConfig holds cache lifetimes per derived entity
type TTLConfig struct {
	Metrics     time.Duration `mapstructure:"metrics"`
	Trends      time.Duration `mapstructure:"trends"`
	Correlation time.Duration `mapstructure:"correlation"`
	Windows     time.Duration `mapstructure:"windows"`
}

// RefreshConfig sizes the background refresh worker
type RefreshConfig struct {
	Workers   int           `mapstructure:"workers"`
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"` // slog or zap
}

// TracingConfig configures OpenTelemetry tracing
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"` // stdout or otlp
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("auth.mode", "supabase")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.driver", "redis")
	v.SetDefault("cache.op_timeout", 500*time.Millisecond)

	v.SetDefault("analytics.source_timeout", 5*time.Second)
	v.SetDefault("analytics.category_average", "running")
	v.SetDefault("analytics.coalesce_misses", true)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.ttl.metrics", time.Hour)
	v.SetDefault("analytics.ttl.trends", 30*time.Minute)
	v.SetDefault("analytics.ttl.correlation", 2*time.Hour)
	v.SetDefault("analytics.ttl.windows", time.Hour)
	v.SetDefault("analytics.refresh.workers", 2)
	v.SetDefault("analytics.refresh.queue_size", 256)
	v.SetDefault("analytics.refresh.timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.backend", "slog")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.sample_ratio", 0.1)
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	// A local .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("FOCUSMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables used by hosting platforms
	_ = v.BindEnv("server.port", "FOCUSMETRICS_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.dsn", "FOCUSMETRICS_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("supabase.url", "FOCUSMETRICS_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "FOCUSMETRICS_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("auth.jwt_secret", "FOCUSMETRICS_AUTH_JWT_SECRET", "SUPABASE_JWT_SECRET")
	_ = v.BindEnv("redis.addr", "FOCUSMETRICS_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("tracing.endpoint", "FOCUSMETRICS_TRACING_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")

	// Read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Comma-separated env values arrive as a single element
	config.Server.CORSAllowedOrigins = splitList(config.Server.CORSAllowedOrigins)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks that all required configuration values are present and consistent
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	case "supabase":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	needSupabase := c.Database.Driver == "supabase" || c.Auth.Mode == "supabase"
	if needSupabase {
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
		}
	}

	switch c.Auth.Mode {
	case "supabase", "header":
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required for jwt auth")
		}
	default:
		return fmt.Errorf("unsupported auth.mode %q", c.Auth.Mode)
	}

	switch c.Cache.Driver {
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis cache")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported cache.driver %q", c.Cache.Driver)
	}

	switch c.Analytics.CategoryAverage {
	case "running", "mean":
	default:
		return fmt.Errorf("unsupported analytics.category_average %q", c.Analytics.CategoryAverage)
	}

	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("invalid analytics.timezone %q: %w", c.Analytics.Timezone, err)
	}

	if c.Analytics.Refresh.Workers <= 0 || c.Analytics.Refresh.QueueSize <= 0 {
		return fmt.Errorf("analytics.refresh.workers and queue_size must be positive")
	}

	switch c.Log.Backend {
	case "slog", "zap":
	default:
		return fmt.Errorf("unsupported log.backend %q", c.Log.Backend)
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			return fmt.Errorf("unsupported tracing.exporter %q", c.Tracing.Exporter)
		}
	}

	return nil
}
