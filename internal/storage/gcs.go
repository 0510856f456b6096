package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client    *storage.Client
	bucket    string
	publicURL string
}

// NewGCS wraps an existing client. An empty publicURL defaults to the
// storage.googleapis.com bucket URL.
func NewGCS(client *storage.Client, bucket, publicURL string) *GCS {
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://storage.googleapis.com/%s", bucket)
	}
	return &GCS{client: client, bucket: bucket, publicURL: publicURL}
}

// Put uploads r as key. Existing objects are never overwritten.
func (g *GCS) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	oh := g.client.Bucket(g.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})

	w := oh.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload gs://%s/%s: %w", g.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", g.bucket, key, err)
	}
	return nil
}

// Delete removes key from the bucket.
func (g *GCS) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := g.client.Bucket(g.bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrNotExist
		}
		return fmt.Errorf("delete gs://%s/%s: %w", g.bucket, key, err)
	}
	return nil
}

// URL returns the public URL of key.
func (g *GCS) URL(key string) string { return joinURL(g.publicURL, key) }

// Close releases the underlying client.
func (g *GCS) Close() error { return g.client.Close() }
