package ports

import (
	"context"
	"io"
)

// FileStorage keeps the raw bytes of uploaded files.
type FileStorage interface {
	// Save writes content under a name derived from name and returns its path.
	Save(ctx context.Context, name string, content []byte) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
