package objectStorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
)

// LocalStorage keeps objects under a directory on disk. Used in development.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create storage dir: %w", commonModels.ErrStorage, err)
	}
	return &LocalStorage{root: root}, nil
}

func (l *LocalStorage) resolve(path string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: invalid object path %q", commonModels.ErrStorage, path)
	}
	return full, nil
}

func (l *LocalStorage) Upload(_ context.Context, path string, content []byte, _ string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("%w: %w", commonModels.ErrStorage, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("%w: %w", commonModels.ErrStorage, err)
	}
	return nil
}

func (l *LocalStorage) Download(_ context.Context, path string) ([]byte, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: object %s: %w", commonModels.ErrStorage, path, commonModels.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", commonModels.ErrStorage, err)
	}
	return data, nil
}

func (l *LocalStorage) Remove(_ context.Context, paths []string) error {
	var errs []error
	for _, p := range paths {
		full, err := l.resolve(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("%w: %w", commonModels.ErrStorage, err))
		}
	}
	if len(errs) > 0 {
		logger.Warn("Some objects could not be removed", "count", len(errs))
	}
	return errors.Join(errs...)
}
