package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/platform/apierr"
)

func TestParseLinksField(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "blank", raw: "", want: 0},
		{name: "empty array", raw: "[]", want: 0},
		{name: "object is ignored", raw: `{"url":"https://x"}`, want: 0},
		{name: "incomplete items dropped", raw: `[{"url":"https://a","filename":"A"},{"url":"https://b"},{"filename":"C"},7]`, want: 1},
		{name: "invalid json", raw: `[{"url":`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			links, err := parseLinksField(tc.raw, "externalLinks")
			if tc.wantErr {
				ae, ok := apierr.As(err)
				if !ok || ae.Status != http.StatusBadRequest || ae.Error() != "Invalid JSON format for externalLinks" {
					t.Fatalf("expected bad request, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if links == nil || len(links) != tc.want {
				t.Fatalf("expected %d links, got %v", tc.want, links)
			}
		})
	}
}

func TestParseStringListField(t *testing.T) {
	ids, err := parseStringListField(`["a/1", " ", "b/2", 3]`, "removeResourceIds")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a/1" || ids[1] != "b/2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if ids, err := parseStringListField(`"a/1"`, "removeResourceIds"); err != nil || ids != nil {
		t.Fatalf("non-array should read as absent, got %v %v", ids, err)
	}
	if _, err := parseStringListField(`[`, "removeResourceIds"); err == nil {
		t.Fatalf("expected an error for invalid json")
	}
}

func TestParseScalars(t *testing.T) {
	if n := parseOptionalInt("7"); n == nil || *n != 7 {
		t.Fatalf("expected 7, got %v", n)
	}
	if n := parseOptionalInt("3.9"); n == nil || *n != 3 {
		t.Fatalf("expected 3, got %v", n)
	}
	if n := parseOptionalInt("first"); n != nil {
		t.Fatalf("expected nil for a non-number, got %d", *n)
	}
	if !parseFormBool("true") || parseFormBool("TRUE") || parseFormBool("1") {
		t.Fatalf("only the literal true is truthy")
	}
	if _, err := parseOptionalFloat("ten", "price"); err == nil {
		t.Fatalf("expected an error for a non-numeric price")
	}
	if p, err := parseOptionalFloat("12.5", "price"); err != nil || *p != 12.5 {
		t.Fatalf("expected 12.5, got %v %v", p, err)
	}
}

func TestReadFieldsJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"title":"Intro","order":3,"isPublished":true,"externalLinks":[{"url":"https://x","filename":"X"}],"description":null}`
	c.Request = httptest.NewRequest(http.MethodPost, "/lessons/create", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	fields, files, err := readFields(c, "files", maxLessonFiles)
	if err != nil {
		t.Fatalf("readFields: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("json bodies carry no files")
	}
	if fields["title"] != "Intro" || fields["order"] != "3" || fields["isPublished"] != "true" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if v, ok := fields.get("description"); !ok || v != "" {
		t.Fatalf("null should be present and blank, got %q %v", v, ok)
	}
	links, err := parseLinksField(fields["externalLinks"], "externalLinks")
	if err != nil || len(links) != 1 {
		t.Fatalf("nested json not preserved: %v %v", links, err)
	}
}
