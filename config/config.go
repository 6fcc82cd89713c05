package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config file or the environment.
type AppConfig struct {
	AppPort string
	GinMode string
	GinPath string

	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// JWT
	JWTSecret          string
	AccessTokenTTLMin  int
	RefreshTokenTTLHrs int

	// Object storage (S3 compatible)
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3Region           string
	S3UseSSL           bool
	PresignExpiryMin   int
	CleanupEnabled     bool
	CleanupIntervalMin int
	CleanupInitialMin  int

	// Redis for caching
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	AllowedOrigins     []string
	RateLimitPerMinute int

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

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

// AccessTokenTTL returns the configured access token lifetime.
func (c AppConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMin) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (c AppConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLHrs) * time.Hour
}

// PresignExpiry returns how long presigned URLs stay valid.
func (c AppConfig) PresignExpiry() time.Duration {
	return time.Duration(c.PresignExpiryMin) * time.Minute
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(key string) string {
		if v, ok := raw[key].(string); ok {
			return v
		}
		return ""
	}
	getInt := func(key string) int {
		if v, ok := raw[key].(float64); ok {
			return int(v)
		}
		return 0
	}
	getBool := func(key string, def bool) bool {
		if v, ok := raw[key].(bool); ok {
			return v
		}
		return def
	}

	out.AppPort = getString("app_port")
	out.GinMode = getString("gin_mode")
	out.GinPath = getString("gin_path")
	out.DatabaseURI = getString("database_uri")
	out.DBHost = getString("db_host")
	out.DBPort = getString("db_port")
	out.DBUser = getString("db_user")
	out.DBPassword = getString("db_password")
	out.DBName = getString("db_name")
	out.JWTSecret = getString("jwt_secret")
	out.AccessTokenTTLMin = getInt("access_token_ttl_min")
	out.RefreshTokenTTLHrs = getInt("refresh_token_ttl_hours")
	out.S3Endpoint = getString("s3_endpoint")
	out.S3AccessKey = getString("s3_access_key")
	out.S3SecretKey = getString("s3_secret_key")
	out.S3Bucket = getString("s3_bucket")
	out.S3Region = getString("s3_region")
	out.S3UseSSL = getBool("s3_use_ssl", false)
	out.PresignExpiryMin = getInt("presign_expiry_min")
	out.CleanupEnabled = getBool("cleanup_enabled", true)
	out.CleanupIntervalMin = getInt("cleanup_interval_min")
	out.CleanupInitialMin = getInt("cleanup_initial_delay_min")
	out.RedisHost = getString("redis_host")
	out.RedisPort = getInt("redis_port")
	out.RedisDB = getInt("redis_db")
	out.RedisPassword = getString("redis_password")
	if s := getString("allowed_origins"); s != "" {
		out.AllowedOrigins = splitAndTrim(s)
	}
	out.RateLimitPerMinute = getInt("rate_limit_per_minute")
	out.LogLevel = getString("log_level")
	out.LogPath = getString("log_path")
	out.LogMaxSizeMB = getInt("log_max_size_mb")
	out.LogMaxBackups = getInt("log_max_backups")
	out.LogMaxAgeDays = getInt("log_max_age_days")
	out.LogCompress = getBool("log_compress", false)

	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "postdeck"
	}
	if c.DBName == "" {
		c.DBName = "postdeck"
	}
	if c.AccessTokenTTLMin <= 0 {
		c.AccessTokenTTLMin = 15
	}
	if c.RefreshTokenTTLHrs <= 0 {
		c.RefreshTokenTTLHrs = 7 * 24
	}
	if c.S3Endpoint == "" {
		c.S3Endpoint = "127.0.0.1:9000"
	}
	if c.S3Bucket == "" {
		c.S3Bucket = "postdeck-media"
	}
	if c.S3Region == "" {
		c.S3Region = "us-east-1"
	}
	if c.PresignExpiryMin <= 0 {
		c.PresignExpiryMin = 15
	}
	if c.CleanupIntervalMin <= 0 {
		c.CleanupIntervalMin = 60
	}
	if c.CleanupInitialMin <= 0 {
		c.CleanupInitialMin = 5
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 60
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
}

func applyEnvOverrides(c *AppConfig) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.GinPath = getEnv("GIN_PATH", c.GinPath)
	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.AccessTokenTTLMin = getEnvInt("ACCESS_TOKEN_TTL_MIN", c.AccessTokenTTLMin)
	c.RefreshTokenTTLHrs = getEnvInt("REFRESH_TOKEN_TTL_HOURS", c.RefreshTokenTTLHrs)
	c.S3Endpoint = getEnv("S3_ENDPOINT", c.S3Endpoint)
	c.S3AccessKey = getEnv("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = getEnv("S3_SECRET_KEY", c.S3SecretKey)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.S3Region = getEnv("S3_REGION", c.S3Region)
	c.S3UseSSL = getEnvBool("S3_USE_SSL", c.S3UseSSL)
	c.PresignExpiryMin = getEnvInt("PRESIGN_EXPIRY_MIN", c.PresignExpiryMin)
	c.CleanupEnabled = getEnvBool("CLEANUP_ENABLED", c.CleanupEnabled)
	c.CleanupIntervalMin = getEnvInt("CLEANUP_INTERVAL_MIN", c.CleanupIntervalMin)
	c.CleanupInitialMin = getEnvInt("CLEANUP_INITIAL_DELAY_MIN", c.CleanupInitialMin)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnvInt("REDIS_PORT", c.RedisPort)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)
	c.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.LogMaxSizeMB)
	c.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.LogMaxBackups)
	c.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.LogMaxAgeDays)
	c.LogCompress = getEnvBool("LOG_COMPRESS", c.LogCompress)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
