package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "default_jwt_secret"

// Config holds all configuration for our application
type Config struct {
	Port        string         `mapstructure:"PORT"`
	Origins     []string       `mapstructure:"-"`
	Environment string         `mapstructure:"ENV"`
	LogLevel    string         `mapstructure:"LOG_LEVEL"`
	JWTSecret   string         `mapstructure:"JWT_SECRET"`
	Database    DatabaseConfig `mapstructure:",squash"`
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver       string `mapstructure:"DB_DRIVER"`
	Host         string `mapstructure:"DB_HOST"`
	Port         string `mapstructure:"DB_PORT"`
	Username     string `mapstructure:"DB_USERNAME"`
	Password     string `mapstructure:"DB_PASSWORD"`
	Name         string `mapstructure:"DB_NAME"`
	DSN          string `mapstructure:"DB_DSN"`
	MaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
}

var envKeys = []string{
	"PORT", "ORIGIN", "ENV", "LOG_LEVEL", "JWT_SECRET",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_NAME", "DB_DSN",
	"DB_MAX_OPEN_CONNS",
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("ORIGIN", "http://localhost:4200")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USERNAME", "root")
	v.SetDefault("DB_NAME", "clinic")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for _, origin := range strings.Split(v.GetString("ORIGIN"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.Origins = append(cfg.Origins, origin)
		}
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if cfg.Database.Port == "" {
		cfg.Database.Port = defaultPort(cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = cfg.Database.buildDSN()
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be \"mysql\", \"postgres\" or \"sqlite\", got %q", c.Database.Driver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be changed from the default in production")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must not be negative, got %d", c.Database.MaxOpenConns)
	}
	return nil
}

func defaultPort(driver string) string {
	switch driver {
	case "postgres":
		return "5432"
	case "mysql":
		return "3306"
	}
	return ""
}

func (d DatabaseConfig) buildDSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Name)
	case "sqlite":
		return d.Name + ".db"
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Name)
	}
}
