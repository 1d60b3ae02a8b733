// Package storage keeps the bytes of downloaded clips. Local files back every
// clip for the lifetime of the process; an S3 bucket can additionally publish
// them under a public URL.
package storage

import (
	"context"
	"io"
)

// Storage defines where downloaded clip content lives.
type Storage interface {
	// SaveVideo writes data to a new local file and returns its path.
	// The name is used as a hint for the filename.
	SaveVideo(ctx context.Context, name string, data io.Reader) (path string, err error)

	// OpenVideo opens a previously saved file.
	// The caller is responsible for closing the returned ReadCloser.
	OpenVideo(ctx context.Context, path string) (io.ReadCloser, error)

	// Cleanup removes the specified files.
	// It continues even if some files fail to delete.
	Cleanup(ctx context.Context, paths []string) error

	// Publish uploads data under key and returns its public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	Publish(ctx context.Context, key, contentType string, data io.Reader) (url string, err error)

	// PublishEnabled reports whether Publish is available.
	PublishEnabled() bool
}
