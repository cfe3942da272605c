package media

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/yungbote/lms-backend/internal/domain/learning"
)

type AssetKind string

const (
	KindImage AssetKind = "image"
	KindVideo AssetKind = "video"
	KindRaw   AssetKind = "raw"
)

// File is an upload handed to a Host. Open may be called more than once.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type Asset struct {
	URL      string
	AssetID  string
	Duration *float64
	Bytes    int64
}

// Host stores lesson and course media on an external asset host.
type Host interface {
	UploadImage(ctx context.Context, f File) (*Asset, error)
	UploadLessonImage(ctx context.Context, f File) (*Asset, error)
	UploadVideo(ctx context.Context, f File) (*Asset, error)
	UploadDocument(ctx context.Context, f File) (*Asset, error)
	// DeleteAsset reports whether an object was removed. A missing object is
	// not an error.
	DeleteAsset(ctx context.Context, assetID string, kind AssetKind) (bool, error)
}

func KindForResource(resourceType string) AssetKind {
	switch resourceType {
	case learning.ResourceVideo:
		return KindVideo
	case learning.ResourceImage:
		return KindImage
	default:
		return KindRaw
	}
}

func FileFromMultipart(fh *multipart.FileHeader) File {
	ct := ""
	if fh.Header != nil {
		ct = fh.Header.Get("Content-Type")
	}
	return File{
		Filename:    path.Base(strings.ReplaceAll(fh.Filename, "\\", "/")),
		ContentType: ct,
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// BytesFile wraps an in-memory payload.
func BytesFile(name, contentType string, data []byte) File {
	return File{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// SafeName reduces a client supplied filename to a conservative object key
// segment.
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 120 {
		ext := path.Ext(out)
		if len(ext) > 10 {
			ext = ""
		}
		out = out[:120-len(ext)] + ext
	}
	return out
}
