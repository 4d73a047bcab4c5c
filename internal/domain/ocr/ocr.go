// Package ocr extracts raw text from scanned documents.
package ocr

import "context"

// Backend turns a document file into plain text.
type Backend interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
