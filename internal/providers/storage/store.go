// Package storage keeps rendered reports on disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"strings"
)

type Store interface {
	// Put writes data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) (Object, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Object describes a stored file.
type Object struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Size     int64  `json:"size"`
}

var (
	ErrInvalidKey = errors.New("invalid_storage_key")
	ErrNotFound   = errors.New("object_not_found")
)

func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, "/\\") {
		return ErrInvalidKey
	}
	return nil
}
