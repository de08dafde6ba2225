// Package blob publishes exported bundles to a blob store: a local directory
// by default, or an S3 bucket.
package blob

import (
	"context"

	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
)

// Store is a pluggable blob backend.
type Store interface {
	// Put stores data under key and returns the object URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	// Get fetches an object by the URL Put returned.
	Get(ctx context.Context, url string) ([]byte, error)
}

// Drivers.
const (
	DriverFilesystem = "fs"
	DriverS3         = "s3"
)

// ErrInvalidURL is returned by Get for URLs the store did not produce.
var ErrInvalidURL = errors.New("invalid blob URL")

// New returns the store selected by cfg.
func New(ctx context.Context, cfg config.PublishConfig) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.Directory)
	case DriverS3:
		return NewS3(ctx, S3Options{Bucket: cfg.Bucket, Region: cfg.Region, Endpoint: cfg.Endpoint})
	}
	return nil, errors.Newf("unsupported blob driver %q", cfg.Driver)
}

// ContentType returns the MIME type for a bundle file extension.
func ContentType(ext string) string {
	switch ext {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".toml":
		return "application/toml"
	}
	return "application/octet-stream"
}
