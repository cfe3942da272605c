package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/lms-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("LOG_MODE", "development")
	for _, key := range []string{"PORT", "ACCESS_TOKEN_TTL", "BCRYPT_COST", "MAX_UPLOAD_MB", "MEDIA_FOLDER_PREFIX", "TRUSTED_PROXIES", "ADMIN_EMAIL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Port != "8080" || cfg.Auth.AccessTokenTTL != 24*time.Hour || cfg.Auth.BcryptCost != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.JWTSecretKey != devJWTSecret {
		t.Fatalf("expected the development secret, got %q", cfg.Auth.JWTSecretKey)
	}
	if len(cfg.HTTP.TrustedProxies) != 0 || cfg.Auth.Admin.enabled() {
		t.Fatalf("proxies and admin seeding should be off by default: %+v", cfg.HTTP)
	}
	if cfg.Media.FolderPrefix != "lms" || cfg.maxUploadBytes() != 100<<20 {
		t.Fatalf("unexpected media defaults: %+v", cfg.Media)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lms.yaml")
	yml := `
http:
  port: "9000"
  cors_allowed_origins: ["https://app.example.com"]
auth:
  jwt_secret_key: from-file
  access_token_ttl: 2h
cache:
  course_ttl: 30s
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("LOGIN_RATE_LIMIT", "3")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "changeme1")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTP.Port != "9100" {
		t.Fatalf("env should override the file, got port %q", cfg.HTTP.Port)
	}
	if cfg.Auth.JWTSecretKey != "from-file" || cfg.Auth.AccessTokenTTL != 2*time.Hour {
		t.Fatalf("file values lost: %+v", cfg.Auth)
	}
	if cfg.Cache.CourseTTL != 30*time.Second || cfg.Cache.LoginRateLimit != 3 {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}
	if len(cfg.HTTP.TrustedProxies) != 2 || cfg.HTTP.TrustedProxies[0] != "10.0.0.0/8" {
		t.Fatalf("unexpected trusted proxies: %v", cfg.HTTP.TrustedProxies)
	}
	if !cfg.Auth.Admin.enabled() || cfg.Auth.Admin.FirstName != "Admin" {
		t.Fatalf("unexpected admin config: %+v", cfg.Auth.Admin)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || !cfg.Redis.Enabled() {
		t.Fatalf("unexpected http/redis config: %+v %+v", cfg.HTTP, cfg.Redis)
	}
}

func TestLoadConfigRequiresSecretInProduction(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_MODE", "production")
	t.Setenv("JWT_SECRET_KEY", "")
	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("expected an error without JWT_SECRET_KEY in production")
	}
}
