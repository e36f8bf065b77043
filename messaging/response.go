package messaging

import (
	"xdao.co/seqnet/sequence"
)

// Result holds either a value or the error that prevented producing it.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func Fail[T any](err error) Result[T] { return Result[T]{Err: err} }

// QueryResponse answers a SequenceRead. Its Kind equals the Kind of the read
// it answers, on success and on failure alike.
type QueryResponse interface {
	Kind() ReadKind
	// Err returns the failure, or nil on success.
	Err() error
	queryResponse()
}

type GetSequenceResponse struct {
	Result Result[sequence.Data]
}

type GetSequenceRangeResponse struct {
	Result Result[[]sequence.Entry]
}

type GetSequenceLastEntryResponse struct {
	Result Result[sequence.IndexedEntry]
}

type GetSequencePermissionsResponse struct {
	Result Result[sequence.Permissions]
}

type GetSequenceUserPermissionsResponse struct {
	Result Result[sequence.UserPermissions]
}

type GetSequenceOwnerResponse struct {
	Result Result[sequence.Owner]
}

func (GetSequenceResponse) Kind() ReadKind                { return ReadGet }
func (GetSequenceRangeResponse) Kind() ReadKind           { return ReadGetRange }
func (GetSequenceLastEntryResponse) Kind() ReadKind       { return ReadGetLastEntry }
func (GetSequencePermissionsResponse) Kind() ReadKind     { return ReadGetPermissions }
func (GetSequenceUserPermissionsResponse) Kind() ReadKind { return ReadGetUserPermissions }
func (GetSequenceOwnerResponse) Kind() ReadKind           { return ReadGetOwner }

func (r GetSequenceResponse) Err() error                { return r.Result.Err }
func (r GetSequenceRangeResponse) Err() error           { return r.Result.Err }
func (r GetSequenceLastEntryResponse) Err() error       { return r.Result.Err }
func (r GetSequencePermissionsResponse) Err() error     { return r.Result.Err }
func (r GetSequenceUserPermissionsResponse) Err() error { return r.Result.Err }
func (r GetSequenceOwnerResponse) Err() error           { return r.Result.Err }

func (GetSequenceResponse) queryResponse()                {}
func (GetSequenceRangeResponse) queryResponse()           {}
func (GetSequenceLastEntryResponse) queryResponse()       {}
func (GetSequencePermissionsResponse) queryResponse()     {}
func (GetSequenceUserPermissionsResponse) queryResponse() {}
func (GetSequenceOwnerResponse) queryResponse()           {}

// CmdError is the single failure shape for every SequenceWrite.
type CmdError struct {
	Err error
}

func (e *CmdError) Error() string {
	if e == nil || e.Err == nil {
		return "data command failed"
	}
	return "data command failed: " + e.Err.Error()
}

func (e *CmdError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
