// Package mediatest provides an in-memory media.Host for tests.
package mediatest

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/lms-backend/internal/platform/media"
)

type Upload struct {
	Method   string
	Filename string
	AssetID  string
}

type Delete struct {
	AssetID string
	Kind    media.AssetKind
}

// Host records every call. Set the *Err fields to make the matching call
// fail; DeleteErr applies per asset id.
type Host struct {
	mu sync.Mutex

	Uploads []Upload
	Deletes []Delete

	UploadErr error
	DeleteErr map[string]error
	Duration  *float64

	seq int
}

func New() *Host {
	return &Host{DeleteErr: map[string]error{}}
}

var _ media.Host = (*Host)(nil)

func (h *Host) UploadImage(ctx context.Context, f media.File) (*media.Asset, error) {
	return h.upload("UploadImage", "course-banners", f, nil)
}

func (h *Host) UploadLessonImage(ctx context.Context, f media.File) (*media.Asset, error) {
	return h.upload("UploadLessonImage", "lesson-images", f, nil)
}

func (h *Host) UploadVideo(ctx context.Context, f media.File) (*media.Asset, error) {
	return h.upload("UploadVideo", "lesson-videos", f, h.Duration)
}

func (h *Host) UploadDocument(ctx context.Context, f media.File) (*media.Asset, error) {
	return h.upload("UploadDocument", "lesson-resources", f, nil)
}

func (h *Host) UploadAvatar(ctx context.Context, f media.File) (*media.Asset, error) {
	return h.upload("UploadAvatar", "avatars", f, nil)
}

func (h *Host) DeleteAsset(ctx context.Context, assetID string, kind media.AssetKind) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Deletes = append(h.Deletes, Delete{AssetID: assetID, Kind: kind})
	if err := h.DeleteErr[assetID]; err != nil {
		return false, err
	}
	return true, nil
}

func (h *Host) upload(method, folder string, f media.File, duration *float64) (*media.Asset, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.UploadErr != nil {
		return nil, h.UploadErr
	}
	h.seq++
	id := fmt.Sprintf("test/%s/%d-%s", folder, h.seq, media.SafeName(f.Filename))
	h.Uploads = append(h.Uploads, Upload{Method: method, Filename: f.Filename, AssetID: id})
	return &media.Asset{
		URL:      "https://media.test/" + id,
		AssetID:  id,
		Duration: duration,
		Bytes:    f.Size,
	}, nil
}

func (h *Host) DeletedIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.Deletes))
	for _, d := range h.Deletes {
		out = append(out, d.AssetID)
	}
	return out
}
