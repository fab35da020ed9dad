// Package media uploads user files to an S3-compatible bucket and deletes
// them again. It stands in for a hosted media service: callers hand over a
// local temp file and get back a public URL.
package media

import (
	"context"
	"errors"
)

// Asset describes an uploaded file.
type Asset struct {
	URL      string  // public URL stored on records
	PublicID string  // object key inside the bucket
	Duration float64 // seconds; zero when unknown
}

// Store is the media collaborator used by services.
type Store interface {
	// Upload stores the file at localPath and removes the local copy,
	// whether or not the upload succeeded.
	Upload(ctx context.Context, localPath string) (Asset, error)
	// Delete removes a previously uploaded object by its public URL.
	Delete(ctx context.Context, url string) error
}

// ErrForeignURL is returned by Delete for URLs this store did not issue.
var ErrForeignURL = errors.New("url does not belong to the media store")

// ErrEmptyFile is returned by Upload for zero-byte files.
var ErrEmptyFile = errors.New("empty file")
