package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"goeda/domain/core"
	apperrors "goeda/internal/errors"
	"goeda/internal/logging"
	"goeda/ports"

	"github.com/google/renameio/v2"
)

// Store keeps uploaded files in a local directory.
type Store struct {
	dir string
}

var _ ports.FileStorage = (*Store)(nil)

// New creates the upload directory if needed.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to resolve upload dir %s", dir)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, apperrors.Wrapf(err, "failed to create upload dir %s", abs)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the absolute storage directory.
func (s *Store) Dir() string { return s.dir }

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Save writes content atomically under a unique name and returns its path.
func (s *Store) Save(ctx context.Context, name string, content []byte) (path string, err error) {
	logger := logging.FromContext(ctx, "filestore")

	base := unsafeChars.ReplaceAllString(filepath.Base(name), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "upload"
	}
	path = filepath.Join(s.dir, fmt.Sprintf("%s-%s", core.NewID(), base))

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to create pending upload file")
	}
	defer func() {
		if cerr := pendingFile.Cleanup(); cerr != nil {
			logger.Debug().Err(cerr).Msg("cleanup pending upload file")
		}
	}()

	if _, err := pendingFile.Write(content); err != nil {
		return "", apperrors.Wrap(err, "failed to write upload")
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return "", apperrors.Wrap(err, "failed to store upload")
	}

	logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("stored upload")
	return path, nil
}

// Open opens a previously saved file. Paths outside the store are rejected.
func (s *Store) Open(_ context.Context, path string) (io.ReadCloser, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to resolve %s", path)
	}
	rel, err := filepath.Rel(s.dir, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil, apperrors.InvalidInput(fmt.Sprintf("path %s is outside the upload directory", path))
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound(fmt.Sprintf("file %s", filepath.Base(abs)))
		}
		return nil, apperrors.Wrapf(err, "failed to open %s", abs)
	}
	return f, nil
}
