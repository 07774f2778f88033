package storage

import "io"

// BlobStore holds question assets (PDF snips, rendered figures). Keys are
// slash-separated paths like "questions/q1/figure.png".
type BlobStore interface {
	// Put stores the blob and returns the canonical key.
	Put(key string, r io.Reader) (string, error)
	Get(key string) (io.ReadCloser, error)
	// SignedURL resolves a key to something a client can fetch; the fs
	// store returns "file://..." for LAN deployments.
	SignedURL(key string) (string, error)
}
