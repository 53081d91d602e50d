package locate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/highlight-flow/internal/logger"
	"github.com/nguyentantai21042004/highlight-flow/pkg/executor"
	"github.com/nguyentantai21042004/highlight-flow/pkg/retry"
)

var reUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Config holds yt-dlp invocation settings.
type Config struct {
	BinaryPath string
	Format     string
	DestDir    string
}

type implYtdlp struct {
	cfg      Config
	executor executor.Executor
	policy   retry.Policy
	logger   logger.Logger
}

// NewYtdlp creates a Locator that downloads via yt-dlp. Queries that are
// not URLs go through yt-dlp's ytsearch to pick the top result.
func NewYtdlp(cfg Config, exec executor.Executor, policy retry.Policy, log logger.Logger) Locator {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "yt-dlp"
	}
	if cfg.Format == "" {
		cfg.Format = "mp4"
	}
	return &implYtdlp{cfg: cfg, executor: exec, policy: policy, logger: log}
}

// Locate downloads the best match for query and returns the local path.
// Retry exhaustion surfaces as *retry.ExternalServiceError.
func (l *implYtdlp) Locate(ctx context.Context, query string) (string, error) {
	if err := os.MkdirAll(l.cfg.DestDir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	target := query
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		target = "ytsearch1:" + query
	}

	outPath := filepath.Join(l.cfg.DestDir, slug(query)+"."+l.cfg.Format)

	l.logger.Info(ctx, "Locating source video: %s", target)

	args := []string{
		"-o", outPath,
		"--format", l.cfg.Format,
		"--no-playlist",
		target,
	}

	err := l.policy.Do(ctx, func(ctx context.Context) error {
		_, err := l.executor.Execute(ctx, l.cfg.BinaryPath, args...)
		return err
	})
	if err != nil {
		return "", &retry.ExternalServiceError{Service: "yt-dlp", Err: err}
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("yt-dlp reported success but %s is missing: %w", outPath, err)
	}

	l.logger.Info(ctx, "Source video downloaded: %s", outPath)
	return outPath, nil
}

// slug builds a short filesystem-safe name from a query.
func slug(query string) string {
	s := reUnsafe.ReplaceAllString(strings.ToLower(query), "_")
	s = strings.Trim(s, "_")
	if len(s) > 48 {
		s = s[:48]
	}
	if s == "" {
		s = "video"
	}
	return s
}
