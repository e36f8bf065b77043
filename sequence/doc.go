// Package sequence defines the data model shared by Sequence operations:
// addresses, indices, entries, principals, owners, permission sets and the
// WriteOp mutation envelope.
//
// All types are plain values. Nothing in this package performs I/O or merges
// concurrent edits; that is the job of the engine executing operations.
package sequence
