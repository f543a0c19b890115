package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var ErrNotFound = errors.New("object not found")

// Object describes one stored audio file.
type Object struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Storage holds generated audio artifacts under flat names.
type Storage interface {
	Save(ctx context.Context, name string, data io.Reader, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Object, error)
	Check(ctx context.Context) error
	Name() string
}

// ValidName rejects anything that could escape the storage root, and
// dotfiles, which hold in-flight uploads.
func ValidName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	return nil
}
