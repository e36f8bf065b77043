package storage

import "errors"

// Sentinel errors shared by every Store implementation.
var (
	ErrNotFound    = errors.New("storage: chunk not stored")
	ErrInvalidCID  = errors.New("storage: cid is undefined or not a chunk cid")
	ErrCIDMismatch = errors.New("storage: chunk bytes do not hash to their cid")
	ErrImmutable   = errors.New("storage: stored chunk differs from the bytes written under its cid")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsCorrupt reports whether err means stored bytes no longer match their CID.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCIDMismatch) || errors.Is(err, ErrImmutable)
}
