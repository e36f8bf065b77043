package messaging

import "fmt"

// Diagnostic names. They are stable across versions, unique within each
// taxonomy, and double as wire discriminators and metric labels.
var (
	readNames = [numReadKinds]string{
		ReadGet:                "GetSequence",
		ReadGetRange:           "GetSequenceRange",
		ReadGetLastEntry:       "GetSequenceLastEntry",
		ReadGetPermissions:     "GetSequencePermissions",
		ReadGetUserPermissions: "GetUserPermissions",
		ReadGetOwner:           "GetOwner",
	}
	writeNames = [numWriteKinds]string{
		WriteNew:                "NewSequence",
		WriteEdit:               "EditSequence",
		WriteDelete:             "DeleteSequence",
		WriteSetOwner:           "SetOwner",
		WriteSetPubPermissions:  "SetPublicPermissions",
		WriteSetPrivPermissions: "SetPrivatePermissions",
	}
)

func (k ReadKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ReadKind(%d)", uint8(k))
	}
	return readNames[k]
}

func (k WriteKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("WriteKind(%d)", uint8(k))
	}
	return writeNames[k]
}

// ParseReadKind is the inverse of ReadKind.String.
func ParseReadKind(name string) (ReadKind, bool) {
	for k, n := range readNames {
		if n == name {
			return ReadKind(k), true
		}
	}
	return 0, false
}

// ParseWriteKind is the inverse of WriteKind.String.
func ParseWriteKind(name string) (WriteKind, bool) {
	for k, n := range writeNames {
		if n == name {
			return WriteKind(k), true
		}
	}
	return 0, false
}

// ReadName returns the diagnostic name of op. Payload contents are ignored.
func ReadName(op SequenceRead) string { return checkRead(op).String() }

// WriteName returns the diagnostic name of op. Payload contents are ignored.
func WriteName(op SequenceWrite) string { return checkWrite(op).String() }

// Describe renders a request as "Request::<name>" for logs.
func Describe(op any) string {
	switch v := op.(type) {
	case SequenceRead:
		return "Request::" + ReadName(v)
	case SequenceWrite:
		return "Request::" + WriteName(v)
	default:
		return fmt.Sprintf("Request::Unknown(%T)", op)
	}
}
