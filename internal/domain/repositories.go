package domain

import (
	"context"
)

// ObjectStore provides access to named blobs in a storage bucket.
type ObjectStore interface {
	// List returns bucket entries under prefix, at most limit (0 = backend default).
	List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error)

	// Download returns the raw bytes of a blob.
	Download(ctx context.Context, name string) ([]byte, error)

	// Upload stores data under name. With upsert set an existing blob of the
	// same name is replaced.
	Upload(ctx context.Context, name string, data []byte, upsert bool) error

	// Remove deletes the named blobs.
	Remove(ctx context.Context, names []string) error
}

// DraftStore persists work-in-progress dataset snapshots locally so an
// interrupted session can be recovered.
type DraftStore interface {
	// GetDraft returns the saved rows for a file, if any.
	GetDraft(fileName string) ([]*Row, bool)

	// SaveDraft snapshots the rows for a file.
	SaveDraft(fileName string, rows []*Row) error

	// DropDraft removes the snapshot for a file.
	DropDraft(fileName string)

	// Close releases the underlying database.
	Close() error
}
