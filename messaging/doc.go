// Package messaging defines the requests a client can issue against a
// Sequence and classifies each one for the network runtime.
//
// Reads (SequenceRead) and writes (SequenceWrite) are two independent closed
// sets. For every request the runtime can ask:
//
//   - where it goes: ReadDestination / WriteDestination
//   - what capability it needs: ReadAuthorisation / WriteAuthorisation
//   - what to answer when it fails: ReadErrorResponse / WriteErrorResponse
//   - what to call it in logs and traces: ReadName / WriteName
//
// Read failures keep the shape of the query that failed, so a caller can tell
// which query was answered from the response alone. Write failures all share
// the single CmdError shape.
//
// Nothing here enforces access control, touches storage or performs I/O.
// Every function is pure and safe for concurrent use.
package messaging
