package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	SlowQueryThreshold time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	CounterCacheTTL time.Duration
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Redis       RedisConfig
}

// Load reads configuration from app.env files and the environment.
// A local .env file, if present, is loaded into the environment first.
func Load() (*Config, error) {
	cfg := read()
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDB is used by commands that only talk to the database.
func LoadDB() (*Config, error) {
	cfg := read()
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	return cfg, nil
}

func read() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond)
	v.SetDefault("COUNTER_CACHE_TTL", 5*time.Second)

	_ = v.ReadInConfig()

	return &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:                v.GetString("DB_DSN"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
			SlowQueryThreshold: v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Redis: RedisConfig{
			Addr:            v.GetString("REDIS_ADDR"),
			Password:        v.GetString("REDIS_PASSWORD"),
			DB:              v.GetInt("REDIS_DB"),
			CounterCacheTTL: v.GetDuration("COUNTER_CACHE_TTL"),
		},
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
