package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Termdates TermdatesConfig
	Events    EventsConfig
	Feed      FeedConfig
	Janitor   JanitorConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig covers validation of session tokens minted by the identity
// provider. The service never issues tokens itself.
type JWTConfig struct {
	Secret     string
	Issuer     string
	ExecGroups []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TermdatesConfig points at the university term-dates API.
type TermdatesConfig struct {
	BaseURL    string
	Timeout    time.Duration
	CutoffYear int
}

// EventsConfig tunes event handling: the civil timezone every event is
// anchored to and the TTL for cached public listings.
type EventsConfig struct {
	Timezone string
	CacheTTL time.Duration
}

// FeedConfig configures the public ICS feed.
type FeedConfig struct {
	Enabled bool
	Name    string
	ProdID  string
}

// JanitorConfig schedules the orphaned week/tag sweep.
type JanitorConfig struct {
	Enabled bool
	Spec    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		ExecGroups: splitAndTrim(v.GetString("JWT_EXEC_GROUPS")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Termdates = TermdatesConfig{
		BaseURL:    v.GetString("TERMDATES_BASE_URL"),
		Timeout:    parseDuration(v.GetString("TERMDATES_TIMEOUT"), 5*time.Second),
		CutoffYear: v.GetInt("TERMDATES_CUTOFF_YEAR"),
	}

	cfg.Events = EventsConfig{
		Timezone: v.GetString("EVENTS_TIMEZONE"),
		CacheTTL: parseDuration(v.GetString("EVENTS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Feed = FeedConfig{
		Enabled: v.GetBool("ENABLE_FEED"),
		Name:    v.GetString("FEED_NAME"),
		ProdID:  v.GetString("FEED_PROD_ID"),
	}

	cfg.Janitor = JanitorConfig{
		Enabled: v.GetBool("ENABLE_JANITOR"),
		Spec:    v.GetString("JANITOR_SPEC"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "society_events")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_EXEC_GROUPS", "exec,sysadmin")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TERMDATES_BASE_URL", "https://tabula.warwick.ac.uk/api/v1")
	v.SetDefault("TERMDATES_TIMEOUT", "5s")
	v.SetDefault("TERMDATES_CUTOFF_YEAR", 2006)

	v.SetDefault("EVENTS_TIMEZONE", "Europe/London")
	v.SetDefault("EVENTS_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_FEED", true)
	v.SetDefault("FEED_NAME", "Society Events")
	v.SetDefault("FEED_PROD_ID", "-//comsoc//events-api//EN")

	v.SetDefault("ENABLE_JANITOR", true)
	v.SetDefault("JANITOR_SPEC", "@hourly")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
