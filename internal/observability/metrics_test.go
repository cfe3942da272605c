package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/courses/:id", "200", time.Millisecond)
	m.ObserveMedia("upload", "image", "ok", 10, time.Millisecond)
	m.ObserveCache("courses_published", true)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.IncRateLimited("login")
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus on nil: %v", err)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := newMetrics()
	m.ObserveAPI("GET", "/courses/:id", "200", 20*time.Millisecond)
	m.ObserveAPI("POST", "/lessons/create", "500", time.Second)
	m.ObserveMedia("upload", "video", "ok", 2048, time.Second)
	m.ObserveMedia("delete", "raw", "missing", 0, time.Millisecond)
	m.ObserveCache("courses_published", false)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`lms_api_requests_total{method="GET",route="/courses/:id",status="200"} 1.000000`,
		`lms_api_requests_error_total 1.000000`,
		`lms_media_operations_total{op="delete",kind="raw",outcome="missing"} 1.000000`,
		`lms_media_uploaded_bytes_total{kind="video"} 2048.000000`,
		`lms_cache_lookups_total{cache="courses_published",result="miss"} 1.000000`,
		`lms_api_request_duration_seconds_bucket{method="GET",route="/courses/:id",status="200",le="0.025"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestWithLe(t *testing.T) {
	if got := withLe("", "1"); got != `{le="1"}` {
		t.Fatalf("withLe empty: %s", got)
	}
	if got := withLe(`{a="b"}`, "+Inf"); got != `{a="b",le="+Inf"}` {
		t.Fatalf("withLe labels: %s", got)
	}
}

func TestParseOTLPHeaders(t *testing.T) {
	h := ParseOTLPHeaders("api-key=abc, bad ,x=")
	if len(h) != 1 || h["api-key"] != "abc" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if ParseOTLPHeaders("  ") != nil {
		t.Fatalf("blank input should give nil")
	}
}
