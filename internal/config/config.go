package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Database DatabaseConfig    `yaml:"database"`
	External ExternalAPIConfig `yaml:"external"`
	Scheme   SchemeConfig      `yaml:"scheme"`
	LogLevel string            `yaml:"log_level"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	Host        string `yaml:"host"`
	MetricsPort string `yaml:"metrics_port"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // sqlite or postgres
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"dbname"`
	SSLMode    string `yaml:"sslmode"`
	SQLitePath string `yaml:"sqlite_path"`
}

type ExternalAPIConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Token             string  `yaml:"token"`
	Timeout           int     `yaml:"timeout"` // seconds
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type SchemeConfig struct {
	PollInterval       time.Duration `yaml:"poll_interval"`
	TickInterval       time.Duration `yaml:"tick_interval"`
	Timezone           string        `yaml:"timezone"`
	SettlementSchedule string        `yaml:"settlement_schedule"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Host:        "localhost",
			MetricsPort: "9090",
		},
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			Host:       "localhost",
			Port:       "5432",
			User:       "scheme",
			Password:   "scheme",
			DBName:     "scheme_core",
			SSLMode:    "disable",
			SQLitePath: "scheme.db",
		},
		External: ExternalAPIConfig{
			Timeout:           30,
			RequestsPerSecond: 5,
			Burst:             2,
		},
		Scheme: SchemeConfig{
			PollInterval:       30 * time.Second,
			TickInterval:       time.Second,
			Timezone:           "Asia/Shanghai",
			SettlementSchedule: "0 */10 * * * *",
		},
		LogLevel: "info",
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then environment variables. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	cfg.overlayEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.MetricsPort = getEnv("METRICS_PORT", c.Server.MetricsPort)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.SQLitePath = getEnv("SQLITE_PATH", c.Database.SQLitePath)

	c.External.BaseURL = getEnv("SCHEME_API_URL", c.External.BaseURL)
	c.External.Token = getEnv("SCHEME_API_TOKEN", c.External.Token)
	c.External.Timeout = getEnvAsInt("SCHEME_API_TIMEOUT", c.External.Timeout)
	c.External.RequestsPerSecond = getEnvAsFloat("SCHEME_API_RPS", c.External.RequestsPerSecond)
	c.External.Burst = getEnvAsInt("SCHEME_API_BURST", c.External.Burst)

	c.Scheme.PollInterval = getEnvAsDuration("SCHEME_POLL_INTERVAL", c.Scheme.PollInterval)
	c.Scheme.TickInterval = getEnvAsDuration("COUNTDOWN_TICK_INTERVAL", c.Scheme.TickInterval)
	c.Scheme.Timezone = getEnv("SCHEME_TIMEZONE", c.Scheme.Timezone)
	c.Scheme.SettlementSchedule = getEnv("SETTLEMENT_SCHEDULE", c.Scheme.SettlementSchedule)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate rejects settings the services cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Scheme.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Scheme.PollInterval)
	}
	if c.External.Timeout <= 0 {
		return fmt.Errorf("external API timeout must be positive, got %d", c.External.Timeout)
	}
	return nil
}

// Location resolves the scheme timezone used for zoneless deadlines.
// Unknown zones fall back to the process local zone.
func (c *Config) Location() *time.Location {
	if c.Scheme.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Scheme.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// PollSchedule is the cron spec of the refresh job
func (c *Config) PollSchedule() string {
	return "@every " + c.Scheme.PollInterval.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func (c *Config) DatabaseURL() string {
	// If DATABASE_URL is set, use it directly
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL
	}

	return "postgres://" + c.Database.User + ":" + c.Database.Password +
		"@" + c.Database.Host + ":" + c.Database.Port +
		"/" + c.Database.DBName + "?sslmode=" + c.Database.SSLMode
}
