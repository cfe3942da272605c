package gcp

import (
	"strings"
	"testing"
)

func TestValidateMediaConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  MediaConfig
		code ConfigErrorCode
	}{
		{"ok", MediaConfig{Bucket: "b"}, ""},
		{"ok emulator", MediaConfig{Bucket: "b", EmulatorHost: "http://fake-gcs:4443"}, ""},
		{"missing bucket", MediaConfig{}, ConfigErrorMissingBucket},
		{"bad emulator", MediaConfig{Bucket: "b", EmulatorHost: "fake-gcs:4443"}, ConfigErrorInvalidEmulatorHost},
		{"bad public base", MediaConfig{Bucket: "b", PublicBaseURL: "localhost:4443"}, ConfigErrorInvalidPublicBaseURL},
	}
	for _, tc := range cases {
		err := ValidateMediaConfig(tc.cfg)
		if tc.code == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		ce, ok := err.(*ConfigError)
		if !ok || ce.Code != tc.code {
			t.Fatalf("%s: want code %q, got %v", tc.name, tc.code, err)
		}
	}
}

func TestResolvePublicBaseURL(t *testing.T) {
	if base, src := resolvePublicBaseURL(MediaConfig{Bucket: "b"}); base != "" || src != "gcs_default" {
		t.Fatalf("default: base=%q src=%q", base, src)
	}
	if base, src := resolvePublicBaseURL(MediaConfig{EmulatorHost: "http://fake-gcs:4443/"}); base != "http://fake-gcs:4443" || src != "storage_emulator_host" {
		t.Fatalf("emulator: base=%q src=%q", base, src)
	}
	base, src := resolvePublicBaseURL(MediaConfig{EmulatorHost: "http://fake-gcs:4443", PublicBaseURL: "http://localhost:4443/"})
	if base != "http://localhost:4443" || src != "media_public_base_url" {
		t.Fatalf("override: base=%q src=%q", base, src)
	}
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		h    *MediaHost
		key  string
		want string
	}{
		{
			name: "gcs default",
			h:    &MediaHost{bucket: "media"},
			key:  "lms/course-banners/a.png",
			want: "https://storage.googleapis.com/media/lms/course-banners/a.png",
		},
		{
			name: "cdn",
			h:    &MediaHost{bucket: "media", cdnDomain: "cdn.example.com"},
			key:  "/lms/lesson-videos/v.mp4",
			want: "https://cdn.example.com/lms/lesson-videos/v.mp4",
		},
		{
			name: "public base",
			h:    &MediaHost{bucket: "media", publicBaseURL: "http://localhost:4443"},
			key:  "lms/x.pdf",
			want: "http://localhost:4443/media/lms/x.pdf",
		},
		{
			name: "emulator",
			h:    &MediaHost{bucket: "media", mode: StorageModeEmulator, emulatorHost: "http://fake-gcs:4443"},
			key:  "lms/lesson-images/1.png",
			want: "http://fake-gcs:4443/storage/v1/b/media/o/lms%2Flesson-images%2F1.png?alt=media",
		},
	}
	for _, tc := range cases {
		if got := tc.h.PublicURL(tc.key); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestObjectKey(t *testing.T) {
	h := &MediaHost{prefix: "lms"}
	key := h.objectKey(FolderLessonResources, "My Notes.pdf")
	if !strings.HasPrefix(key, "lms/lesson-resources/") || !strings.HasSuffix(key, "-My_Notes.pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	if other := h.objectKey(FolderLessonResources, "My Notes.pdf"); other == key {
		t.Fatalf("keys should be unique")
	}
	bare := (&MediaHost{}).objectKey(FolderAvatars, "a.png")
	if !strings.HasPrefix(bare, "avatars/") {
		t.Fatalf("unexpected key without prefix %q", bare)
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a/b.PNG":  "image/png",
		"v.mp4":    "video/mp4",
		"doc.pdf":  "application/pdf",
		"unknown":  "application/octet-stream",
		"clip.mov": "video/quicktime",
	}
	for in, want := range cases {
		if got := contentTypeForKey(in); got != want {
			t.Fatalf("contentTypeForKey(%q) = %q, want %q", in, got, want)
		}
	}
}
