package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr        string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64

	SnowflakeNode int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	Ingest    IngestConfig
	Report    ReportConfig
	RateLimit RateLimitConfig
}

type IngestConfig struct {
	Timezone  string
	ChunkSize int
}

type ReportConfig struct {
	Engine          string
	ChromeRemoteURL string
	ChromeTimeout   time.Duration
	ChromeNoSandbox bool

	Storage    string
	Directory  string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string
	S3Access   string
	S3Secret   string
	S3PathLike bool
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	UploadRate    float64
	UploadBurst   int
	UploadLockTTL time.Duration
}

const (
	ReportEngineMaroto   = "maroto"
	ReportEngineChromedp = "chromedp"

	ReportStorageFilesystem = "filesystem"
	ReportStorageS3         = "s3"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:         getenv("APP_SERVICE", "voltbill"),
		AppVersion:      getenv("APP_VERSION", "0.1.0"),
		Environment:     getenv("ENVIRONMENT", "development"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getenvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxUploadBytes:  getenvInt64("UPLOAD_MAX_BYTES", 32<<20),
		SnowflakeNode:   getenvInt64("SNOWFLAKE_NODE", 1),

		DBType:            strings.ToLower(getenv("DATABASE_TYPE", "sqlite")),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "voltbill"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "voltbill.db"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 10)),
		DBConnMaxLifetime: getenvDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		DBConnMaxIdleTime: getenvDuration("DATABASE_CONN_MAX_IDLE_TIME", 5*time.Minute),

		Ingest: IngestConfig{
			Timezone:  getenv("INGEST_TIMEZONE", "Europe/Ljubljana"),
			ChunkSize: int(getenvInt64("INGEST_CHUNK_SIZE", 500)),
		},
		Report: ReportConfig{
			Engine:          normalizeEngine(getenv("REPORT_ENGINE", ReportEngineMaroto)),
			ChromeRemoteURL: strings.TrimSpace(getenv("REPORT_CHROME_REMOTE_URL", "")),
			ChromeTimeout:   getenvDuration("REPORT_CHROME_TIMEOUT", 30*time.Second),
			ChromeNoSandbox: getenvBool("REPORT_CHROME_NO_SANDBOX", false),
			Storage:         normalizeStorage(getenv("REPORT_STORAGE", ReportStorageFilesystem)),
			Directory:       getenv("REPORT_DIR", "reports"),
			S3Bucket:        strings.TrimSpace(getenv("REPORT_S3_BUCKET", "")),
			S3Region:        getenv("REPORT_S3_REGION", "us-east-1"),
			S3Endpoint:      strings.TrimSpace(getenv("REPORT_S3_ENDPOINT", "")),
			S3Prefix:        strings.Trim(getenv("REPORT_S3_PREFIX", "reports"), "/"),
			S3Access:        strings.TrimSpace(getenv("REPORT_S3_ACCESS_KEY", "")),
			S3Secret:        strings.TrimSpace(getenv("REPORT_S3_SECRET_KEY", "")),
			S3PathLike:      getenvBool("REPORT_S3_PATH_STYLE", true),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword: getenv("REDIS_PASSWORD", ""),
			RedisDB:       int(getenvInt64("REDIS_DB", 0)),
			UploadRate:    getenvFloat("RATE_LIMIT_UPLOAD_RATE", 1),
			UploadBurst:   int(getenvInt64("RATE_LIMIT_UPLOAD_BURST", 10)),
			UploadLockTTL: getenvDuration("RATE_LIMIT_UPLOAD_LOCK_TTL", 2*time.Minute),
		},
	}
}

func normalizeEngine(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), ReportEngineChromedp) {
		return ReportEngineChromedp
	}
	return ReportEngineMaroto
}

func normalizeStorage(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), ReportStorageS3) {
		return ReportStorageS3
	}
	return ReportStorageFilesystem
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
