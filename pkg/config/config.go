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

// Credential store backends.
const (
	CredentialStoreFile   = "file"
	CredentialStoreRedis  = "redis"
	CredentialStoreMemory = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	ListCache  ListCacheConfig
	Metrics    MetricsConfig
	Client     ClientConfig
	Credential CredentialConfig
	Import     ImportConfig
	Export     ExportConfig
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	// DevIssueToken logs a freshly signed token at startup outside production.
	DevIssueToken bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ListCacheConfig governs the redis cache in front of list endpoints.
type ListCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// ClientConfig drives the dashboard client and its resource controllers.
type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	SearchDebounce   time.Duration
	FeedbackTTL      time.Duration
	DefaultPageLimit int
}

// CredentialConfig selects where the bearer token is persisted.
type CredentialConfig struct {
	Store    string
	Dir      string
	RedisKey string
}

// ImportConfig tunes the spreadsheet import workers.
type ImportConfig struct {
	Workers int
	Retries int
}

// ExportConfig sets where rendered exports are written.
type ExportConfig struct {
	Dir string
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
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
		Secret:        v.GetString("JWT_SECRET"),
		Expiration:    parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		DevIssueToken: v.GetBool("DEV_ISSUE_TOKEN"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.ListCache = ListCacheConfig{
		Enabled: v.GetBool("ENABLE_LIST_CACHE"),
		TTL:     parseDuration(v.GetString("LIST_CACHE_TTL"), time.Minute),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	limit := v.GetInt("DEFAULT_PAGE_LIMIT")
	if limit <= 0 {
		limit = 10
	}
	cfg.Client = ClientConfig{
		BaseURL:          strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout:          parseDuration(v.GetString("API_TIMEOUT"), 10*time.Second),
		SearchDebounce:   parseDuration(v.GetString("SEARCH_DEBOUNCE"), 500*time.Millisecond),
		FeedbackTTL:      parseDuration(v.GetString("FEEDBACK_TTL"), 3*time.Second),
		DefaultPageLimit: limit,
	}

	cfg.Credential = CredentialConfig{
		Store:    strings.ToLower(v.GetString("CREDENTIAL_STORE")),
		Dir:      v.GetString("CREDENTIAL_DIR"),
		RedisKey: v.GetString("CREDENTIAL_REDIS_KEY"),
	}

	cfg.Import = ImportConfig{
		Workers: v.GetInt("IMPORT_WORKERS"),
		Retries: v.GetInt("IMPORT_RETRIES"),
	}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("DEV_ISSUE_TOKEN", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_LIST_CACHE", false)
	v.SetDefault("LIST_CACHE_TTL", "1m")
	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("SEARCH_DEBOUNCE", "500ms")
	v.SetDefault("FEEDBACK_TTL", "3s")
	v.SetDefault("DEFAULT_PAGE_LIMIT", 10)

	v.SetDefault("CREDENTIAL_STORE", CredentialStoreFile)
	v.SetDefault("CREDENTIAL_DIR", "$HOME/.schooldash")
	v.SetDefault("CREDENTIAL_REDIS_KEY", "schooldash:credential")

	v.SetDefault("IMPORT_WORKERS", 2)
	v.SetDefault("IMPORT_RETRIES", 2)
	v.SetDefault("EXPORT_DIR", "./exports")
}

func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
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
