// Package storage persists uploaded financial documents on local disk under a
// static-served directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"franchisehub-api/internal/common/logger"
)

// FileStore writes uploaded documents to disk. Stored filenames are the upload
// timestamp in unix milliseconds plus the original extension, so the same
// relative URL recorded on the business record always resolves under the
// static file route.
type FileStore struct {
	dir        string
	publicPath string
	maxBytes   int64
	logger     logger.Logger
}

func NewFileStore(dir, publicPath string, maxSizeMB int, log logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &FileStore{
		dir:        dir,
		publicPath: strings.TrimSuffix(publicPath, "/"),
		maxBytes:   int64(maxSizeMB) * 1024 * 1024,
		logger:     log,
	}, nil
}

// Dir returns the directory served statically.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save stores the document and returns the relative URL path to record on the
// business record.
func (s *FileStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), ext)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create document file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write document file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(dst)
		return "", fmt.Errorf("document exceeds %d bytes", s.maxBytes)
	}

	s.logger.Debug("stored financial document", map[string]interface{}{
		"file":  name,
		"bytes": written,
	})

	return path.Join(s.publicPath, name), nil
}
