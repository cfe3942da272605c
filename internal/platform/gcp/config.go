package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type StorageMode string

const (
	StorageModeGCS      StorageMode = "gcs"
	StorageModeEmulator StorageMode = "gcs_emulator"
)

const (
	FolderCourseBanners   = "course-banners"
	FolderLessonImages    = "lesson-images"
	FolderLessonVideos    = "lesson-videos"
	FolderLessonResources = "lesson-resources"
	FolderAvatars         = "avatars"
)

type MediaConfig struct {
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url"`
	CDNDomain     string `yaml:"cdn_domain"`
	EmulatorHost  string `yaml:"emulator_host"`
	FolderPrefix  string `yaml:"folder_prefix"`
	Credentials   string `yaml:"credentials"`
	FFProbePath   string `yaml:"ffprobe_path"`
}

// Mode is the emulator whenever an emulator host is configured.
func (cfg MediaConfig) Mode() StorageMode {
	if strings.TrimSpace(cfg.EmulatorHost) != "" {
		return StorageModeEmulator
	}
	return StorageModeGCS
}

type ConfigErrorCode string

const (
	ConfigErrorMissingBucket        ConfigErrorCode = "missing_bucket"
	ConfigErrorInvalidEmulatorHost  ConfigErrorCode = "invalid_emulator_host"
	ConfigErrorInvalidPublicBaseURL ConfigErrorCode = "invalid_public_base_url"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid media config"
	}
	switch e.Code {
	case ConfigErrorMissingBucket:
		return "missing MEDIA_GCS_BUCKET"
	case ConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ConfigErrorInvalidPublicBaseURL:
		return fmt.Sprintf("invalid MEDIA_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", e.Value)
	default:
		return "invalid media config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func ValidateMediaConfig(cfg MediaConfig) error {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &ConfigError{Code: ConfigErrorMissingBucket}
	}
	if cfg.Mode() == StorageModeEmulator && !isAbsoluteURL(cfg.EmulatorHost) {
		return &ConfigError{Code: ConfigErrorInvalidEmulatorHost, Value: cfg.EmulatorHost}
	}
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" && !isAbsoluteURL(raw) {
		return &ConfigError{Code: ConfigErrorInvalidPublicBaseURL, Value: raw}
	}
	return nil
}

// resolvePublicBaseURL picks the base public URLs are built from and names
// where it came from.
func resolvePublicBaseURL(cfg MediaConfig) (baseURL string, source string) {
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" {
		return strings.TrimRight(raw, "/"), "media_public_base_url"
	}
	if cfg.Mode() == StorageModeEmulator {
		return strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"), "storage_emulator_host"
	}
	return "", "gcs_default"
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
