package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Weather  WeatherConfig  `yaml:"weather"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	StaticDir  string `yaml:"static_dir"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// DSN is used by the sqlite driver only.
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// PostgresDSN builds the pgx connection string for the postgres driver.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	FlightEventsTopic string   `yaml:"flight_events_topic"`
	GroupID           string   `yaml:"group_id"`
}

type WeatherConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKeyEnv       string `yaml:"api_key_env"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

func (w WeatherConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

func (w WeatherConfig) CacheTTL() time.Duration {
	return time.Duration(w.CacheTTLSeconds) * time.Second
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration the service runs with when no file is given:
// an in-memory store on localhost:8080 with cache and events disabled.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:    "127.0.0.1:8080",
			StaticDir:  "./static",
			SwaggerDir: "./api",
		},
		Database: DatabaseConfig{
			Driver:  DriverSQLite,
			DSN:     ":memory:",
			Port:    5432,
			SSLMode: "disable",
		},
		Kafka: KafkaConfig{
			FlightEventsTopic: "flight-events",
			GroupID:           "flightdesk-notifier",
		},
		Weather: WeatherConfig{
			BaseURL:         "https://api.openweathermap.org/data/2.5/weather",
			APIKeyEnv:       "OPENWEATHER_API_KEY",
			TimeoutSeconds:  10,
			CacheTTLSeconds: 300,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig overlays the YAML file at path on top of Default. A missing file
// is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.HTTP.Address == "" {
		return errors.New("http.address is required")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.FlightEventsTopic == "" {
		return errors.New("kafka.flight_events_topic is required when brokers are set")
	}
	return nil
}
