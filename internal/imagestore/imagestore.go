// Package imagestore persists person photos as named blobs. The blob name is
// derived from the person, so re-uploading replaces the previous photo.
package imagestore

import "context"

// Store saves and removes photo blobs and reports the URL a saved blob is
// served from.
type Store interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, name string) error
	URL(name string) string
}
