// Package storage persists attachment bytes on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that would resolve outside the base directory.
var ErrInvalidKey = errors.New("invalid storage key")

// LocalStorage persists files on disk under a base directory.
// Keys are slash-separated paths relative to that directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./data/attachments"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Key returns the storage key for an attachment:
// "<tripID>/<attachmentID>-<sanitized filename>".
func Key(tripID, attachmentID uuid.UUID, filename string) string {
	return path.Join(tripID.String(), attachmentID.String()+"-"+sanitize(filename))
}

// Save copies r into the file for the attachment and returns its key and size.
// A partially written file is removed on failure.
func (s *LocalStorage) Save(ctx context.Context, tripID, attachmentID uuid.UUID, filename string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	key := Key(tripID, attachmentID, filename)
	p, err := s.resolve(key)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", 0, fmt.Errorf("prepare attachment directory: %w", err)
	}

	file, err := os.Create(p)
	if err != nil {
		return "", 0, fmt.Errorf("create attachment file: %w", err)
	}
	n, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(p)
		return "", 0, fmt.Errorf("write attachment stream: %w", err)
	}
	return key, n, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(_ context.Context, key string) (*os.File, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open attachment file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete attachment file: %w", err)
	}
	// The trip directory is removed once empty; a non-empty one stays.
	_ = os.Remove(filepath.Dir(p))
	return nil
}

func (s *LocalStorage) resolve(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.baseDir, rel), nil
}

// sanitize keeps letters, digits, dot, dash and underscore, and replaces
// everything else with an underscore.
func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return "file"
	}
	return clean
}
