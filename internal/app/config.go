package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/lms-backend/internal/clients/redis"
	"github.com/yungbote/lms-backend/internal/data/db"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/envutil"
	"github.com/yungbote/lms-backend/internal/platform/gcp"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

const devJWTSecret = "dev-only-secret"

type AuthConfig struct {
	JWTSecretKey   string        `yaml:"jwt_secret_key"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
	Admin          AdminConfig   `yaml:"admin"`
}

// AdminConfig seeds the instructor account at startup. Public registration
// only ever creates students.
type AdminConfig struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"fname"`
	LastName  string `yaml:"lname"`
}

func (a AdminConfig) enabled() bool {
	return strings.TrimSpace(a.Email) != "" && a.Password != ""
}

type HTTPConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_allowed_origins"`
	MaxUploadMB int      `yaml:"max_upload_mb"`

	// Empty means the socket peer is the client IP and X-Forwarded-For is ignored.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type CacheConfig struct {
	CourseTTL       time.Duration `yaml:"course_ttl"`
	LoginRateLimit  int           `yaml:"login_rate_limit"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`
}

type Config struct {
	LogMode        string                   `yaml:"log_mode"`
	HTTP           HTTPConfig               `yaml:"http"`
	Auth           AuthConfig               `yaml:"auth"`
	Postgres       db.Config                `yaml:"postgres"`
	Redis          redis.Config             `yaml:"redis"`
	Cache          CacheConfig              `yaml:"cache"`
	Media          gcp.MediaConfig          `yaml:"media"`
	Otel           observability.OtelConfig `yaml:"otel"`
	MetricsEnabled bool                     `yaml:"metrics_enabled"`
}

func (c Config) isDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.LogMode)) {
	case "prod", "production":
		return false
	}
	return true
}

func defaultConfig() Config {
	return Config{
		LogMode: "development",
		HTTP: HTTPConfig{
			Port:        "8080",
			MaxUploadMB: 100,
		},
		Auth: AuthConfig{
			AccessTokenTTL: 24 * time.Hour,
			BcryptCost:     10,
			Admin: AdminConfig{
				FirstName: "Admin",
				LastName:  "User",
			},
		},
		Postgres: db.Config{
			Driver:  db.DriverPostgres,
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "lms",
			SSLMode: "disable",
		},
		Cache: CacheConfig{
			CourseTTL:       60 * time.Second,
			LoginRateLimit:  10,
			LoginRateWindow: 60 * time.Second,
		},
		Media: gcp.MediaConfig{
			FolderPrefix: "lms",
		},
		Otel: observability.OtelConfig{
			ServiceName: "lms-backend",
			SampleRatio: 1,
		},
	}
}

// LoadConfig starts from defaults, applies CONFIG_FILE when set, then lets
// the environment override both.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}

	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	cfg.HTTP.Port = envutil.String("PORT", cfg.HTTP.Port)
	cfg.HTTP.CORSOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.HTTP.CORSOrigins)
	cfg.HTTP.MaxUploadMB = envutil.Int("MAX_UPLOAD_MB", cfg.HTTP.MaxUploadMB)
	cfg.HTTP.TrustedProxies = envutil.List("TRUSTED_PROXIES", cfg.HTTP.TrustedProxies)

	cfg.Auth.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecretKey)
	cfg.Auth.AccessTokenTTL = envutil.Seconds("ACCESS_TOKEN_TTL", cfg.Auth.AccessTokenTTL)
	cfg.Auth.BcryptCost = envutil.Int("BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Auth.Admin.Email = envutil.String("ADMIN_EMAIL", cfg.Auth.Admin.Email)
	cfg.Auth.Admin.Password = envutil.String("ADMIN_PASSWORD", cfg.Auth.Admin.Password)
	cfg.Auth.Admin.FirstName = envutil.String("ADMIN_FNAME", cfg.Auth.Admin.FirstName)
	cfg.Auth.Admin.LastName = envutil.String("ADMIN_LNAME", cfg.Auth.Admin.LastName)

	cfg.Postgres.Driver = envutil.String("DB_DRIVER", cfg.Postgres.Driver)
	cfg.Postgres.DSN = envutil.String("POSTGRES_DSN", cfg.Postgres.DSN)
	cfg.Postgres.Host = envutil.String("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = envutil.String("POSTGRES_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = envutil.String("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = envutil.String("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Name = envutil.String("POSTGRES_NAME", cfg.Postgres.Name)
	cfg.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.Postgres.SSLMode)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Cache.CourseTTL = envutil.Seconds("COURSE_CACHE_TTL", cfg.Cache.CourseTTL)
	cfg.Cache.LoginRateLimit = envutil.Int("LOGIN_RATE_LIMIT", cfg.Cache.LoginRateLimit)
	cfg.Cache.LoginRateWindow = envutil.Seconds("LOGIN_RATE_WINDOW", cfg.Cache.LoginRateWindow)

	cfg.Media.Bucket = envutil.String("MEDIA_GCS_BUCKET", cfg.Media.Bucket)
	cfg.Media.PublicBaseURL = envutil.String("MEDIA_PUBLIC_BASE_URL", cfg.Media.PublicBaseURL)
	cfg.Media.CDNDomain = envutil.String("MEDIA_CDN_DOMAIN", cfg.Media.CDNDomain)
	cfg.Media.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", cfg.Media.EmulatorHost)
	cfg.Media.FolderPrefix = envutil.String("MEDIA_FOLDER_PREFIX", cfg.Media.FolderPrefix)
	cfg.Media.Credentials = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", cfg.Media.Credentials)
	cfg.Media.FFProbePath = envutil.String("MEDIA_FFPROBE_PATH", cfg.Media.FFProbePath)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	if raw := strings.TrimSpace(os.Getenv("OTEL_SAMPLER_RATIO")); raw != "" {
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Otel.SampleRatio = ratio
		}
	}
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	if cfg.Auth.JWTSecretKey == "" {
		if !cfg.isDevelopment() {
			return Config{}, fmt.Errorf("JWT_SECRET_KEY is required in %s mode", cfg.LogMode)
		}
		if log != nil {
			log.Warn("JWT_SECRET_KEY not set; using development secret")
		}
		cfg.Auth.JWTSecretKey = devJWTSecret
	}
	if cfg.HTTP.MaxUploadMB <= 0 {
		cfg.HTTP.MaxUploadMB = 100
	}
	return cfg, nil
}

func (c Config) maxUploadBytes() int64 {
	return int64(c.HTTP.MaxUploadMB) << 20
}
