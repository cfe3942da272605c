package localmedia

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/lms-backend/internal/platform/ctxutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// Prober reads media metadata with ffprobe.
//
// ffprobe must be on PATH (or configured explicitly). When it is missing
// Available reports false and callers skip probing.
type Prober interface {
	Available() bool
	// Duration returns the container duration in seconds.
	Duration(ctx context.Context, path string) (float64, error)
	// DurationOf spools r to a temp file and probes it.
	DurationOf(ctx context.Context, r io.Reader, suffix string) (float64, error)
}

type prober struct {
	log         *logger.Logger
	ffprobePath string
	workRoot    string
	timeout     time.Duration
}

func NewProber(log *logger.Logger, ffprobePath string) Prober {
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	return &prober{
		log:         log.With("service", "MediaProber"),
		ffprobePath: ffprobePath,
		workRoot:    filepath.Join(os.TempDir(), "lms-media"),
		timeout:     30 * time.Second,
	}
}

func (p *prober) Available() bool {
	_, err := exec.LookPath(p.ffprobePath)
	return err == nil
}

func (p *prober) Duration(ctx context.Context, path string) (float64, error) {
	ctx = ctxutil.Default(ctx)
	if path == "" {
		return 0, fmt.Errorf("path required")
	}
	if _, err := exec.LookPath(p.ffprobePath); err != nil {
		return 0, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w; out=%s", err, string(out))
	}
	return parseDuration(string(out))
}

func (p *prober) DurationOf(ctx context.Context, r io.Reader, suffix string) (float64, error) {
	if err := os.MkdirAll(p.workRoot, 0o755); err != nil {
		return 0, fmt.Errorf("mkdir workRoot: %w", err)
	}
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	f, err := os.CreateTemp(p.workRoot, "probe-*"+suffix)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	return p.Duration(ctx, f.Name())
}

func parseDuration(out string) (float64, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "N/A" {
			continue
		}
		d, err := strconv.ParseFloat(line, 64)
		if err != nil || d < 0 {
			continue
		}
		return d, nil
	}
	return 0, fmt.Errorf("ffprobe output missing duration")
}
