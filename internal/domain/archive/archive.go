// Package archive stores the original document images, one folder per
// period and supplier, with part-numbered filenames so re-submissions of
// the same entry append instead of overwriting.
package archive

import (
	"context"
	"io"
)

// FolderRef identifies a supplier folder inside a period segment.
type FolderRef string

// Archive is the narrow file-archive collaborator interface.
type Archive interface {
	// EnsureFolder returns the folder for (period folder, supplier),
	// creating it when absent.
	EnsureFolder(ctx context.Context, periodFolder, supplier string) (FolderRef, error)
	// CountByPrefix counts the files in a folder whose names start with
	// prefix; used to pick the next part number.
	CountByPrefix(ctx context.Context, folder FolderRef, prefix string) (int, error)
	// Upload stores one file under the folder.
	Upload(ctx context.Context, folder FolderRef, filename string, r io.Reader) error
}
