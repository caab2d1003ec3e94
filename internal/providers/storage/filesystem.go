package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type FileSystem struct {
	dir string
	log *zap.Logger
}

func NewFileSystem(dir string, log *zap.Logger) *FileSystem {
	if dir == "" {
		dir = "reports"
	}
	return &FileSystem{dir: dir, log: log.Named("storage.filesystem")}
}

func (s *FileSystem) Put(ctx context.Context, key string, data []byte, contentType string) (Object, error) {
	if err := validateKey(key); err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Object{}, fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(s.dir, key)
	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Object{}, fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Object{}, fmt.Errorf("store report: %w", err)
	}

	s.log.Debug("report stored", zap.String("path", path), zap.Int("bytes", len(data)))
	return Object{Key: key, Location: path, Size: int64(len(data))}, nil
}

func (s *FileSystem) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
