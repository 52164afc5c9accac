package storage

import (
	"context"
	"io"
)

// FileStorage defines the contract for report file storage backends.
type FileStorage interface {
	// Save stores the file content under a logical folder and returns the
	// location (a filesystem path or a remote URL) where it can be fetched.
	Save(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// Delete removes a previously stored file using its location.
	Delete(ctx context.Context, location string) error
}
