package exportstore

import (
	"context"
	"io"
	"path"
	"strings"
)

// Store persists export files.
type Store interface {
	// Put writes the export and returns its download URL.
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	// Open returns ErrNotFound when the export does not exist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// DeletePrefix removes every export whose name starts with prefix and
	// returns how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	URL(name string) string
}

func validName(name string) bool {
	return name != "" &&
		name != "." &&
		!strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`) &&
		path.Base(name) == name
}
