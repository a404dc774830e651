package port

import (
	"context"
	"io"
)

// BlobStore is the binary file area. Names are generated server-side and
// carry no path components.
type BlobStore interface {
	// Write stores the stream under name and returns the number of bytes
	// written.
	Write(ctx context.Context, name string, r io.Reader) (int64, error)
	// Open returns a seekable reader over the stored bytes plus the total
	// size, for byte-range serving.
	Open(ctx context.Context, name string) (io.ReadSeekCloser, int64, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}
