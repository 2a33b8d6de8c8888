// Package upload implements the two-phase CSV upload: save and analyze a file
// to get a suggested table and column mapping, then bulk-load it once the
// user confirms.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
)

// ErrTooLarge is returned when an upload exceeds the configured size.
var ErrTooLarge = errors.New("uploaded file is too large")

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store keeps uploaded CSV files in a single flat directory between the
// analyze and execute phases.
type Store struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
}

// NewStore creates dir if needed.
func NewStore(dir string, maxBytes int64, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, logger: logger.Named("upload-store")}, nil
}

// Save writes r under a unique name derived from original and returns that name.
func (s *Store) Save(original string, r io.Reader) (string, error) {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if !strings.EqualFold(filepath.Ext(base), ".csv") {
		return "", fmt.Errorf("%w: only .csv files can be uploaded", apperrors.ErrInvalidRequest)
	}
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "._")
	name := uuid.NewString()[:8] + "_" + base

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	var src io.Reader = r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("write upload file: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("close upload file: %w", closeErr)
	case s.maxBytes > 0 && n > s.maxBytes:
		err = fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}

	s.logger.Info("Saved upload", zap.String("file", name), zap.Int64("bytes", n))
	return name, nil
}

// Path resolves a stored file name. Names containing path elements are
// rejected; a missing file yields apperrors.ErrNotFound.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid file name %q", apperrors.ErrInvalidRequest, name)
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: file %s", apperrors.ErrNotFound, name)
	}
	return path, nil
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}
