// Package blob abstracts durable storage for audio payloads. The ingest
// path only ever sees the opaque ref a Put returns; swapping the disk
// adapter for an object store does not touch message handling.
package blob

import (
	"context"
	"io"
)

// Storage persists raw payloads and hands back dereferenceable refs.
type Storage interface {
	// Put stores the payload and returns an opaque, durable ref (a URL
	// path) that clients can dereference. The ref is valid only after Put
	// returns successfully.
	Put(ctx context.Context, contentType string, r io.Reader) (ref string, err error)
}
