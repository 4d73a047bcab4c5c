package ocr

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExtractTextRunsBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}

	// A stub that echoes its arguments back, standing in for the real binary.
	dir := t.TempDir()
	stub := filepath.Join(dir, "tesseract-stub")
	script := "#!/bin/sh\nprintf 'BENEFICIÁRIO: ILLY CAFES\\nValor do Documento 150,00\\n'\n"
	require.NoError(t, os.WriteFile(stub, []byte(script), 0o755))

	backend := NewTesseractCLI("por", testLogger(), WithBinary(stub))
	text, err := backend.ExtractText(context.Background(), filepath.Join(dir, "doc.pdf"))
	require.NoError(t, err)
	assert.Contains(t, text, "ILLY CAFES")
	assert.Contains(t, text, "150,00")
}

func TestExtractTextMissingBinary(t *testing.T) {
	backend := NewTesseractCLI("por", testLogger(), WithBinary(filepath.Join(t.TempDir(), "nope")))
	_, err := backend.ExtractText(context.Background(), "doc.pdf")
	require.Error(t, err)
}

func TestExtractTextHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := NewTesseractCLI("por", testLogger())
	_, err := backend.ExtractText(ctx, "doc.pdf")
	require.Error(t, err)
}
