package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const defaultTimeout = 2 * time.Minute

// TesseractCLI shells out to the tesseract binary.
type TesseractCLI struct {
	binary   string
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// TesseractOption configures a TesseractCLI.
type TesseractOption func(*TesseractCLI)

// WithBinary overrides the tesseract executable path.
func WithBinary(path string) TesseractOption {
	return func(t *TesseractCLI) { t.binary = path }
}

// WithTimeout bounds a single extraction.
func WithTimeout(d time.Duration) TesseractOption {
	return func(t *TesseractCLI) { t.timeout = d }
}

// NewTesseractCLI builds a backend using the given language pack
// (for example "por").
func NewTesseractCLI(language string, logger *slog.Logger, opts ...TesseractOption) *TesseractCLI {
	t := &TesseractCLI{
		binary:   "tesseract",
		language: language,
		timeout:  defaultTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TesseractCLI) ExtractText(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.binary, path, "stdout", "-l", t.language)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		t.logger.Error("ocr extraction failed",
			"path", path,
			"stderr", strings.TrimSpace(stderr.String()),
			"error", err)
		return "", fmt.Errorf("tesseract %s: %w", path, err)
	}

	text := stdout.String()
	t.logger.Debug("ocr extraction done",
		"path", path,
		"chars", len(text),
		"duration", time.Since(start))
	return text, nil
}
