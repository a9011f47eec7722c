package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
	Upstream  UpstreamConfig
	Valuation ValuationConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration. No brokers means events stay in process.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Enabled reports whether at least one broker is configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// RedisConfig holds the quote cache configuration. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QuoteTTL time.Duration
}

// UpstreamConfig holds the third-party quote endpoints
type UpstreamConfig struct {
	YahooBaseURL      string
	CoinbaseBaseURL   string
	TwelveDataBaseURL string
	TwelveDataKey     string
	Timeout           time.Duration
}

// ValuationConfig holds the pipeline settings that used to be process-wide constants
type ValuationConfig struct {
	ReportingCurrency   string
	CryptoQuoteCurrency string
	Palette             []string
	RefreshInterval     time.Duration
	Concurrency         int
	SnapshotLocation    *time.Location
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// DefaultPalette is the chart color cycle used when CHART_PALETTE is unset
var DefaultPalette = []string{
	"#8884d8", "#82ca9d", "#ffc658", "#ff7300", "#ff0000",
	"#00ff00", "#0088ff", "#ff0088", "#8800ff", "#ff8800",
}

var defaults = map[string]any{
	"SERVER_PORT":           "8080",
	"SERVER_HOST":           "0.0.0.0",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "postgres",
	"DB_PASSWORD":           "postgres",
	"DB_NAME":               "networth",
	"DB_SSLMODE":            "disable",
	"KAFKA_BROKERS":         "",
	"KAFKA_TOPIC":           "holding-events",
	"KAFKA_GROUP_ID":        "networth-tracker",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"QUOTE_CACHE_TTL":       "30s",
	"YAHOO_BASE_URL":        "https://query1.finance.yahoo.com",
	"COINBASE_BASE_URL":     "https://api.coinbase.com",
	"TWELVE_DATA_BASE_URL":  "https://api.twelvedata.com",
	"TWELVE_DATA_KEY":       "",
	"UPSTREAM_TIMEOUT":      "10s",
	"REPORTING_CURRENCY":    "USD",
	"CRYPTO_QUOTE_CURRENCY": "USD",
	"CHART_PALETTE":         strings.Join(DefaultPalette, ","),
	"REFRESH_INTERVAL":      "60s",
	"VALUATION_CONCURRENCY": 0,
	"SNAPSHOT_TIMEZONE":     "UTC",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
}

// Load reads configuration from the environment. A .env file in the working directory
// is loaded first when present, and CONFIG_FILE may name an additional YAML file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	loc, err := time.LoadLocation(v.GetString("SNAPSHOT_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TIMEZONE: %w", err)
	}

	palette := splitList(v.GetString("CHART_PALETTE"))
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			QuoteTTL: v.GetDuration("QUOTE_CACHE_TTL"),
		},
		Upstream: UpstreamConfig{
			YahooBaseURL:      strings.TrimRight(v.GetString("YAHOO_BASE_URL"), "/"),
			CoinbaseBaseURL:   strings.TrimRight(v.GetString("COINBASE_BASE_URL"), "/"),
			TwelveDataBaseURL: strings.TrimRight(v.GetString("TWELVE_DATA_BASE_URL"), "/"),
			TwelveDataKey:     v.GetString("TWELVE_DATA_KEY"),
			Timeout:           v.GetDuration("UPSTREAM_TIMEOUT"),
		},
		Valuation: ValuationConfig{
			ReportingCurrency:   strings.ToUpper(v.GetString("REPORTING_CURRENCY")),
			CryptoQuoteCurrency: strings.ToUpper(v.GetString("CRYPTO_QUOTE_CURRENCY")),
			Palette:             palette,
			RefreshInterval:     v.GetDuration("REFRESH_INTERVAL"),
			Concurrency:         v.GetInt("VALUATION_CONCURRENCY"),
			SnapshotLocation:    loc,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if cfg.Valuation.RefreshInterval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", cfg.Valuation.RefreshInterval)
	}
	return cfg, nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
