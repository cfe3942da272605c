package learning

import "strings"

const (
	ResourceVideo    = "video"
	ResourceImage    = "image"
	ResourcePDF      = "pdf"
	ResourceDocument = "document"
	ResourceLink     = "link"
)

// Resource is embedded in a Lesson and has no identity of its own. Link
// resources never carry an asset id; every other kind points at a hosted asset.
type Resource struct {
	URL      string   `json:"url"`
	AssetID  string   `json:"assetId,omitempty"`
	Filename string   `json:"filename"`
	Type     string   `json:"type"`
	Size     *int64   `json:"size,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
}

func (r Resource) Valid() bool {
	return strings.TrimSpace(r.URL) != "" && strings.TrimSpace(r.Filename) != "" && strings.TrimSpace(r.Type) != ""
}

// ResourceTypeForContentType classifies an upload by its MIME type.
func ResourceTypeForContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case strings.HasPrefix(ct, "video/"):
		return ResourceVideo
	case strings.HasPrefix(ct, "image/"):
		return ResourceImage
	case ct == "application/pdf":
		return ResourcePDF
	default:
		return ResourceDocument
	}
}
