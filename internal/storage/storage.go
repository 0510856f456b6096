package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotExist is returned when deleting or opening an unknown object.
var ErrNotExist = errors.New("storage: object does not exist")

// Storage persists uploaded files under a flat key space.
type Storage interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of key.
	URL(key string) string
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return "", errors.New("storage: invalid object key")
	}
	return key, nil
}
