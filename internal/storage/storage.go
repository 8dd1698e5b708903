package storage

import (
	"context"
	"errors"
	"io"
)

// SavedObject identifies a stored blob: the public URL clients fetch it from
// and the storage identifier used to delete it later.
type SavedObject struct {
	URL       string
	StorageID string
}

// BlobStore persists binary media assets.
type BlobStore interface {
	Save(ctx context.Context, key string, r io.Reader) (SavedObject, error)
	Remove(ctx context.Context, storageID string) error
}

// ErrUploadFailed indicates the upload could not complete within the retry
// budget.
var ErrUploadFailed = errors.New("blob upload failed")
