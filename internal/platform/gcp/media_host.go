package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/localmedia"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/platform/media"
)

const (
	bannerMaxW = 1200
	bannerMaxH = 600
	lessonMaxW = 1000
	lessonMaxH = 600

	metaKind     = "kind"
	metaFilename = "filename"
)

// MediaHost stores course and lesson media in a single GCS bucket. Asset ids
// are object keys.
type MediaHost struct {
	log           *logger.Logger
	client        *storage.Client
	bucket        string
	mode          StorageMode
	emulatorHost  string
	publicBaseURL string
	cdnDomain     string
	prefix        string
	prober        localmedia.Prober
}

var _ media.Host = (*MediaHost)(nil)

func NewMediaHost(ctx context.Context, log *logger.Logger, cfg MediaConfig, prober localmedia.Prober) (*MediaHost, error) {
	if err := ValidateMediaConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate media config: %w", err)
	}
	hostLog := log.With("service", "MediaHost")

	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	publicBaseURL, publicBaseSource := resolvePublicBaseURL(cfg)

	hostLog.Info(
		"Media host initialized",
		"mode", cfg.Mode(),
		"bucket", cfg.Bucket,
		"emulator_host", cfg.EmulatorHost,
		"public_base_source", publicBaseSource,
		"public_base_url", publicBaseURL,
		"probe_durations", prober != nil && prober.Available(),
	)

	return &MediaHost{
		log:           hostLog,
		client:        client,
		bucket:        strings.TrimSpace(cfg.Bucket),
		mode:          cfg.Mode(),
		emulatorHost:  strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"),
		publicBaseURL: publicBaseURL,
		cdnDomain:     strings.TrimSpace(cfg.CDNDomain),
		prefix:        strings.Trim(strings.TrimSpace(cfg.FolderPrefix), "/"),
		prober:        prober,
	}, nil
}

func newStorageClient(ctx context.Context, cfg MediaConfig) (*storage.Client, error) {
	if cfg.Mode() == StorageModeEmulator {
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := ClientOptions(cfg.Credentials)
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (h *MediaHost) Close() error {
	if h == nil || h.client == nil {
		return nil
	}
	return h.client.Close()
}

func (h *MediaHost) UploadImage(ctx context.Context, f media.File) (*media.Asset, error) {
	limited, err := media.LimitFile(f, bannerMaxW, bannerMaxH)
	if err != nil {
		return nil, fmt.Errorf("prepare banner: %w", err)
	}
	return h.upload(ctx, FolderCourseBanners, media.KindImage, limited)
}

func (h *MediaHost) UploadLessonImage(ctx context.Context, f media.File) (*media.Asset, error) {
	limited, err := media.LimitFile(f, lessonMaxW, lessonMaxH)
	if err != nil {
		return nil, fmt.Errorf("prepare lesson image: %w", err)
	}
	return h.upload(ctx, FolderLessonImages, media.KindImage, limited)
}

func (h *MediaHost) UploadVideo(ctx context.Context, f media.File) (*media.Asset, error) {
	asset, err := h.upload(ctx, FolderLessonVideos, media.KindVideo, f)
	if err != nil {
		return nil, err
	}
	if d, ok := h.probeDuration(ctx, f); ok {
		asset.Duration = &d
	}
	return asset, nil
}

func (h *MediaHost) UploadDocument(ctx context.Context, f media.File) (*media.Asset, error) {
	return h.upload(ctx, FolderLessonResources, media.KindRaw, f)
}

// UploadAvatar stores a generated user avatar.
func (h *MediaHost) UploadAvatar(ctx context.Context, f media.File) (*media.Asset, error) {
	return h.upload(ctx, FolderAvatars, media.KindImage, f)
}

func (h *MediaHost) DeleteAsset(ctx context.Context, assetID string, kind media.AssetKind) (bool, error) {
	start := time.Now()
	key := strings.TrimLeft(strings.TrimSpace(assetID), "/")
	if key == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	obj := h.client.Bucket(h.bucket).Object(key)
	attrs, err := obj.Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		observability.Current().ObserveMedia("delete", string(kind), "missing", 0, time.Since(start))
		return false, nil
	}
	if err != nil {
		observability.Current().ObserveMedia("delete", string(kind), "error", 0, time.Since(start))
		return false, fmt.Errorf("failed to stat GCS object %q in bucket %q: %w", key, h.bucket, err)
	}
	if stored := attrs.Metadata[metaKind]; stored != "" && stored != string(kind) {
		h.log.Warn("media delete kind mismatch", "asset_id", key, "want", kind, "stored", stored)
		observability.Current().ObserveMedia("delete", string(kind), "missing", 0, time.Since(start))
		return false, nil
	}
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			observability.Current().ObserveMedia("delete", string(kind), "missing", 0, time.Since(start))
			return false, nil
		}
		observability.Current().ObserveMedia("delete", string(kind), "error", 0, time.Since(start))
		return false, fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, h.bucket, err)
	}
	observability.Current().ObserveMedia("delete", string(kind), "ok", 0, time.Since(start))
	return true, nil
}

func (h *MediaHost) upload(ctx context.Context, folder string, kind media.AssetKind, f media.File) (*media.Asset, error) {
	start := time.Now()
	if f.Open == nil {
		return nil, fmt.Errorf("upload %q: no content", f.Filename)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", f.Filename, err)
	}
	defer rc.Close()

	key := h.objectKey(folder, f.Filename)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := h.client.Bucket(h.bucket).Object(key).NewWriter(ctx)
	w.ContentType = strings.TrimSpace(f.ContentType)
	if w.ContentType == "" {
		w.ContentType = contentTypeForKey(key)
	}
	w.Metadata = map[string]string{metaKind: string(kind), metaFilename: f.Filename}
	n, err := io.Copy(w, rc)
	if err != nil {
		_ = w.Close()
		observability.Current().ObserveMedia("upload", string(kind), "error", 0, time.Since(start))
		return nil, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		observability.Current().ObserveMedia("upload", string(kind), "error", 0, time.Since(start))
		return nil, fmt.Errorf("failed to close GCS writer: %w", err)
	}
	observability.Current().ObserveMedia("upload", string(kind), "ok", n, time.Since(start))

	return &media.Asset{
		URL:     h.PublicURL(key),
		AssetID: key,
		Bytes:   n,
	}, nil
}

func (h *MediaHost) probeDuration(ctx context.Context, f media.File) (float64, bool) {
	if h.prober == nil || !h.prober.Available() {
		return 0, false
	}
	rc, err := f.Open()
	if err != nil {
		h.log.Warn("video probe skipped", "filename", f.Filename, "error", err)
		return 0, false
	}
	defer rc.Close()
	d, err := h.prober.DurationOf(ctx, rc, path.Ext(f.Filename))
	if err != nil {
		h.log.Warn("video probe failed", "filename", f.Filename, "error", err)
		return 0, false
	}
	return d, true
}

func (h *MediaHost) objectKey(folder, filename string) string {
	name := uuid.NewString() + "-" + media.SafeName(filename)
	if h.prefix == "" {
		return path.Join(folder, name)
	}
	return path.Join(h.prefix, folder, name)
}

func (h *MediaHost) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if h.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", h.cdnDomain, key)
	}
	if h.mode == StorageModeEmulator {
		if u := h.emulatorObjectMediaURL(key); u != "" {
			return u
		}
	}
	if h.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", h.publicBaseURL, h.bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", h.bucket, key)
}

func (h *MediaHost) emulatorObjectMediaURL(key string) string {
	base := strings.TrimRight(strings.TrimSpace(h.publicBaseURL), "/")
	if base == "" {
		base = strings.TrimRight(strings.TrimSpace(h.emulatorHost), "/")
	}
	if base == "" {
		return ""
	}
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		base,
		url.PathEscape(h.bucket),
		url.PathEscape(key),
	)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(s, ".pptx"):
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return "application/octet-stream"
	}
}
