package exportstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores exports in a single directory. Files are written to a
// temporary name first and renamed into place.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if dir == "" {
		return nil, ErrInvalidConfig
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Local{dir: abs, baseURL: baseURL}, nil
}

func (s *Local) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return "", errors.Join(ErrWrite, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp.*")
	if err != nil {
		return "", errors.Join(ErrWrite, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", errors.Join(ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Join(ErrWrite, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", errors.Join(ErrWrite, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		return "", errors.Join(ErrWrite, err)
	}
	return s.URL(name), nil
}

func (s *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	return f, nil
}

func (s *Local) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if strings.ContainsAny(prefix, `/\`) || strings.Contains(prefix, "..") {
		return 0, ErrInvalidName
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, errors.Join(ErrDelete, err)
	}

	var n int
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return n, errors.Join(ErrDelete, err)
		}
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return n, errors.Join(ErrDelete, err)
		}
		n++
	}
	return n, nil
}

func (s *Local) URL(name string) string {
	return s.baseURL + name
}
