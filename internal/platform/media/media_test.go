package media

import (
	"testing"

	"github.com/yungbote/lms-backend/internal/domain/learning"
)

func TestKindForResource(t *testing.T) {
	cases := map[string]AssetKind{
		learning.ResourceVideo:    KindVideo,
		learning.ResourceImage:    KindImage,
		learning.ResourcePDF:      KindRaw,
		learning.ResourceDocument: KindRaw,
		"spreadsheet":             KindRaw,
	}
	for in, want := range cases {
		if got := KindForResource(in); got != want {
			t.Fatalf("KindForResource(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"notes.pdf", "notes.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\My Slides.pptx`, "My_Slides.pptx"},
		{"", "file"},
		{"résumé.doc", "r_sum_.doc"},
	}
	for _, tc := range cases {
		if got := SafeName(tc.in); got != tc.want {
			t.Fatalf("SafeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
