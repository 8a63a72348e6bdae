// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the counter service
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development" validate:"oneof=development staging production test"`
	Database DatabaseConfig
	Server   ServerConfig
	CORS     CORSConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envDefault:"sqlite:///./app.db" validate:"required"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25" validate:"min=1"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5" validate:"min=0"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m" validate:"min=0"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m" validate:"min=0"`
	SlowQueryTime   time.Duration `env:"DB_SLOW_QUERY_TIME" envDefault:"1s" validate:"gt=0"`
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"127.0.0.1" validate:"required"`
	Port            int           `env:"SERVER_PORT" envDefault:"8000" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	BodyLimit       int           `env:"SERVER_BODY_LIMIT" envDefault:"1048576" validate:"min=1024"`
	EnableDocs      bool          `env:"SERVER_ENABLE_DOCS" envDefault:"true"`
}

// Address returns the host:port pair the server listens on
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173" validate:"min=1,dive,required"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
}

type LoggingConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format     string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout" validate:"oneof=stdout file both"`
	FilePath   string `env:"LOG_FILE_PATH" envDefault:"./logs/counter-api.log"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100" validate:"min=1"` // MB
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5" validate:"min=0"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"30" validate:"min=0"` // days
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics" validate:"startswith=/"`
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}
		}
	}
	return Parse(env.ToMap(os.Environ()))
}

// Parse builds a validated Config from the given variables
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Logging.Output != "stdout" && strings.TrimSpace(cfg.Logging.FilePath) == "" {
		return nil, errors.New("configuration validation failed: LOG_FILE_PATH is required when LOG_OUTPUT writes to a file")
	}
	return cfg, nil
}

// Validate checks every field and reports all violations at once
func Validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("env"), ",", 2)[0]
		if name == "" {
			return fld.Name
		}
		return name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	var problems []string
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fe.Field() + " must be positive"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %q", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
