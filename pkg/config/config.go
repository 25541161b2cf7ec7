package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devSessionSecret = "dev_session_secret"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	CORS     CORSConfig
	Log      LogConfig
	Catalog  CatalogConfig
	Saved    SavedSchedulesConfig
	Export   ExportConfig
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

// SessionConfig controls planner session tokens and stored state lifetime.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig points the catalog client at PlanetTerp and umd.io.
type CatalogConfig struct {
	PlanetTerpBaseURL string
	UMDIOBaseURL      string
	Timeout           time.Duration
	CacheEnabled      bool
	CacheTTL          time.Duration
	PrefetchWorkers   int
	PrefetchRetries   int
	RefreshCron       string
}

// SavedSchedulesConfig gates the saved-schedule endpoints.
type SavedSchedulesConfig struct {
	Enabled bool
}

// ExportConfig anchors calendar exports to a term and controls stored
// download links.
type ExportConfig struct {
	TermStart   time.Time
	TermWeeks   int
	Timezone    string
	Dir         string
	LinkTTL     time.Duration
	CleanupCron string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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

	cfg.Session = SessionConfig{
		Secret: v.GetString("SESSION_SECRET"),
		TTL:    parseDuration(v.GetString("SESSION_TTL"), 30*24*time.Hour),
		Issuer: v.GetString("SESSION_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		PlanetTerpBaseURL: v.GetString("PLANETTERP_BASE_URL"),
		UMDIOBaseURL:      v.GetString("UMDIO_BASE_URL"),
		Timeout:           parseDuration(v.GetString("CATALOG_TIMEOUT"), 10*time.Second),
		CacheEnabled:      v.GetBool("CATALOG_CACHE_ENABLED"),
		CacheTTL:          parseDuration(v.GetString("CATALOG_CACHE_TTL"), 6*time.Hour),
		PrefetchWorkers:   v.GetInt("CATALOG_PREFETCH_WORKERS"),
		PrefetchRetries:   v.GetInt("CATALOG_PREFETCH_RETRIES"),
		RefreshCron:       strings.TrimSpace(v.GetString("CATALOG_REFRESH_CRON")),
	}

	cfg.Saved = SavedSchedulesConfig{
		Enabled: v.GetBool("ENABLE_SAVED_SCHEDULES"),
	}

	termWeeks := v.GetInt("EXPORT_TERM_WEEKS")
	if termWeeks <= 0 {
		termWeeks = 15
	}
	cfg.Export = ExportConfig{
		TermStart:   parseDate(v.GetString("EXPORT_TERM_START"), time.Date(2025, time.August, 25, 0, 0, 0, 0, time.UTC)),
		TermWeeks:   termWeeks,
		Timezone:    v.GetString("EXPORT_TIMEZONE"),
		Dir:         v.GetString("EXPORT_DIR"),
		LinkTTL:     parseDuration(v.GetString("EXPORT_LINK_TTL"), 7*24*time.Hour),
		CleanupCron: strings.TrimSpace(v.GetString("EXPORT_CLEANUP_CRON")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is empty"))
	}
	if c.Env == EnvProduction && c.Session.Secret == devSessionSecret {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Catalog.PrefetchWorkers < 0 {
		errs = append(errs, errors.New("CATALOG_PREFETCH_WORKERS must not be negative"))
	}
	if c.Export.LinkTTL <= 0 {
		errs = append(errs, errors.New("EXPORT_LINK_TTL must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", devSessionSecret)
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("SESSION_ISSUER", "course-planner")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANETTERP_BASE_URL", "https://api.planetterp.com/v1")
	v.SetDefault("UMDIO_BASE_URL", "https://api.umd.io/v1")
	v.SetDefault("CATALOG_TIMEOUT", "10s")
	v.SetDefault("CATALOG_CACHE_ENABLED", true)
	v.SetDefault("CATALOG_CACHE_TTL", "6h")
	v.SetDefault("CATALOG_PREFETCH_WORKERS", 2)
	v.SetDefault("CATALOG_PREFETCH_RETRIES", 2)
	v.SetDefault("CATALOG_REFRESH_CRON", "0 4 * * *")

	v.SetDefault("ENABLE_SAVED_SCHEDULES", true)

	v.SetDefault("EXPORT_TERM_START", "2025-08-25")
	v.SetDefault("EXPORT_TERM_WEEKS", 15)
	v.SetDefault("EXPORT_TIMEZONE", "America/New_York")
	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_LINK_TTL", "168h")
	v.SetDefault("EXPORT_CLEANUP_CRON", "30 * * * *")
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

func parseDate(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return fallback
	}

	return t
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
