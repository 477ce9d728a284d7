package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAdminToken is the shared secret used when none is configured.
const DefaultAdminToken = "admin123"

// AppConfig holds file and environment driven configuration values.
type AppConfig struct {
	AppPort            string
	SiteTitle          string
	SiteDescription    string
	SeedPosts          bool
	RelatedPostsLimit  int
	RateLimitPerMinute int
	AllowedOrigins     []string
	ShutdownTimeoutSec int
	// Admin access
	AdminToken          string
	AdminTokenHash      string
	JWTSecret           string
	AdminSessionMinutes int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Page view counters (MySQL); memory when disabled
	DatabaseEnabled bool
	DatabaseURI     string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	// Redis for response caching and token revocation
	CacheEnabled    bool
	CacheTTLSeconds int
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// UsingDefaultAdminToken reports whether the built-in shared secret is active.
func (c AppConfig) UsingDefaultAdminToken() bool {
	return c.AdminTokenHash == "" && c.AdminToken == DefaultAdminToken
}

var cfg AppConfig
var loaded bool

// envBindings maps config keys to the environment variables overriding them.
var envBindings = map[string]string{
	"app.AppPort":             "APP_PORT",
	"app.SiteTitle":           "SITE_TITLE",
	"app.SiteDescription":     "SITE_DESCRIPTION",
	"app.SeedPosts":           "SEED_POSTS",
	"app.RelatedPostsLimit":   "RELATED_POSTS_LIMIT",
	"app.RateLimitPerMinute":  "RATE_LIMIT_PER_MINUTE",
	"app.AllowedOrigins":      "ALLOWED_ORIGINS",
	"app.ShutdownTimeoutSec":  "SHUTDOWN_TIMEOUT_SEC",
	"admin.Token":             "ADMIN_TOKEN",
	"admin.TokenHash":         "ADMIN_TOKEN_HASH",
	"admin.JWTSecret":         "JWT_SECRET",
	"admin.SessionMinutes":    "ADMIN_SESSION_MINUTES",
	"database.Enabled":        "DB_ENABLED",
	"database.DatabaseURI":    "DATABASE_URI",
	"database.DBHost":         "DB_HOST",
	"database.DBPort":         "DB_PORT",
	"database.DBUser":         "DB_USER",
	"database.DBPassword":     "DB_PASSWORD",
	"database.DBName":         "DB_NAME",
	"cache.Enabled":           "CACHE_ENABLED",
	"cache.TTLSeconds":        "CACHE_TTL_SECONDS",
	"redis.RedisHost":         "REDIS_HOST",
	"redis.RedisPort":         "REDIS_PORT",
	"redis.RedisDB":           "REDIS_DB",
	"redis.RedisPassword":     "REDIS_PASSWORD",
	"log.Level":               "LOG_LEVEL",
	"log.Path":                "LOG_PATH",
	"log.GinMode":             "GIN_MODE",
	"log.GinPath":             "GIN_LOG_PATH",
	"log.MaxSizeMB":           "LOG_MAX_SIZE_MB",
	"log.MaxBackups":          "LOG_MAX_BACKUPS",
	"log.MaxAgeDays":          "LOG_MAX_AGE_DAYS",
	"log.Compress":            "LOG_COMPRESS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.AppPort", "8080")
	v.SetDefault("app.SiteTitle", "Mini Blog")
	v.SetDefault("app.SiteDescription", "Notes on building for the web")
	v.SetDefault("app.SeedPosts", true)
	v.SetDefault("app.RelatedPostsLimit", 3)
	v.SetDefault("app.RateLimitPerMinute", 60)
	v.SetDefault("app.AllowedOrigins", []string{"*"})
	v.SetDefault("app.ShutdownTimeoutSec", 30)
	v.SetDefault("admin.Token", DefaultAdminToken)
	v.SetDefault("admin.SessionMinutes", 720)
	v.SetDefault("database.DBHost", "127.0.0.1")
	v.SetDefault("database.DBPort", "3306")
	v.SetDefault("database.DBName", "miniblog")
	v.SetDefault("cache.TTLSeconds", 3600)
	v.SetDefault("redis.RedisHost", "127.0.0.1")
	v.SetDefault("redis.RedisPort", 6379)
	v.SetDefault("log.Level", "info")
	v.SetDefault("log.Path", "logs/app.log")
	v.SetDefault("log.GinMode", "release")
	v.SetDefault("log.MaxSizeMB", 100)
	v.SetDefault("log.MaxBackups", 3)
	v.SetDefault("log.MaxAgeDays", 7)
}

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// A missing .env is normal outside local development
	_ = godotenv.Load()

	c, err := LoadFile(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// LoadFile builds a config with precedence: environment -> JSON file -> defaults.
// A missing file is not an error.
func LoadFile(path string) (AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return AppConfig{}, err
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, err
	}

	out := AppConfig{
		AppPort:             v.GetString("app.AppPort"),
		SiteTitle:           v.GetString("app.SiteTitle"),
		SiteDescription:     v.GetString("app.SiteDescription"),
		SeedPosts:           v.GetBool("app.SeedPosts"),
		RelatedPostsLimit:   v.GetInt("app.RelatedPostsLimit"),
		RateLimitPerMinute:  v.GetInt("app.RateLimitPerMinute"),
		AllowedOrigins:      stringList(v, "app.AllowedOrigins"),
		ShutdownTimeoutSec:  v.GetInt("app.ShutdownTimeoutSec"),
		AdminToken:          strings.TrimSpace(v.GetString("admin.Token")),
		AdminTokenHash:      strings.TrimSpace(v.GetString("admin.TokenHash")),
		JWTSecret:           v.GetString("admin.JWTSecret"),
		AdminSessionMinutes: v.GetInt("admin.SessionMinutes"),
		GinMode:             v.GetString("log.GinMode"),
		GinPath:             v.GetString("log.GinPath"),
		DatabaseEnabled:     v.GetBool("database.Enabled"),
		DatabaseURI:         v.GetString("database.DatabaseURI"),
		DBHost:              v.GetString("database.DBHost"),
		DBPort:              v.GetString("database.DBPort"),
		DBUser:              v.GetString("database.DBUser"),
		DBPassword:          v.GetString("database.DBPassword"),
		DBName:              v.GetString("database.DBName"),
		CacheEnabled:        v.GetBool("cache.Enabled"),
		CacheTTLSeconds:     v.GetInt("cache.TTLSeconds"),
		RedisHost:           v.GetString("redis.RedisHost"),
		RedisPort:           v.GetInt("redis.RedisPort"),
		RedisDB:             v.GetInt("redis.RedisDB"),
		RedisPassword:       v.GetString("redis.RedisPassword"),
		LogLevel:            strings.ToLower(v.GetString("log.Level")),
		LogPath:             v.GetString("log.Path"),
		LogMaxSizeMB:        v.GetInt("log.MaxSizeMB"),
		LogMaxBackups:       v.GetInt("log.MaxBackups"),
		LogMaxAgeDays:       v.GetInt("log.MaxAgeDays"),
		LogCompress:         v.GetBool("log.Compress"),
	}

	if out.AdminToken == "" && out.AdminTokenHash == "" {
		out.AdminToken = DefaultAdminToken
	}
	// Sessions do not survive a restart anyway, so a per-process secret is enough
	if out.JWTSecret == "" {
		out.JWTSecret = uuid.NewString() + uuid.NewString()
	}
	if out.RelatedPostsLimit <= 0 {
		out.RelatedPostsLimit = 3
	}
	if out.AdminSessionMinutes <= 0 {
		out.AdminSessionMinutes = 720
	}
	return out, nil
}

// stringList accepts both a JSON array and a comma separated env value.
func stringList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return v.GetStringSlice(key)
}
