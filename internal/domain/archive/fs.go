package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/doppio-labs/fiscaldoc/internal/domain/common"
)

// FS is a local-filesystem Archive rooted at a base directory.
type FS struct {
	root   string
	logger *slog.Logger
}

// NewFS creates a filesystem archive under root.
func NewFS(root string, logger *slog.Logger) *FS {
	return &FS{root: root, logger: logger}
}

func (a *FS) EnsureFolder(ctx context.Context, periodFolder, supplier string) (FolderRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(a.root, periodFolder, supplier)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", common.NewCollaboratorError("archive", err)
	}
	return FolderRef(dir), nil
}

func (a *FS) CountByPrefix(ctx context.Context, folder FolderRef, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(string(folder))
	if err != nil {
		return 0, common.NewCollaboratorError("archive", err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			count++
		}
	}
	return count, nil
}

func (a *FS) Upload(ctx context.Context, folder FolderRef, filename string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(string(folder), filename)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return common.NewCollaboratorError("archive", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return common.NewCollaboratorError("archive", err)
	}
	if err := f.Close(); err != nil {
		return common.NewCollaboratorError("archive", err)
	}
	a.logger.Info("document archived", "path", dst)
	return nil
}

// PartFilename builds the archive naming convention:
// "<due DD-MM-YYYY> - R$<amount> - parte <n><ext>".
func PartFilename(prefix string, part int, originalName string) string {
	return fmt.Sprintf("%s - parte %d%s", prefix, part, filepath.Ext(originalName))
}

// Prefix builds the shared filename prefix for one ledger entry, from the
// due date in DD-MM-YYYY form and the formatted amount.
func Prefix(dueDateDisplay, formattedAmount string) string {
	return fmt.Sprintf("%s - R$%s", strings.ReplaceAll(dueDateDisplay, "/", "-"), formattedAmount)
}
