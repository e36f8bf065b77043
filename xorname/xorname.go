// Package xorname defines the fixed-size content names used to route data
// within the storage network.
//
// A Name is 32 bytes. Names derived from content are the sha3-256 digest of
// that content; names chosen by a client (for example the name of a Sequence)
// are taken as-is. Routing treats both the same way: the replica set that
// handles a Name is the section whose Prefix matches it.
package xorname

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/multiformats/go-multibase"
	"golang.org/x/crypto/sha3"
)

// Len is the size of a Name in bytes.
const Len = 32

// Name is a content name in the network's address space.
type Name [Len]byte

var ErrInvalidName = errors.New("xorname: invalid name")

// FromContent returns the sha3-256 name of data.
func FromContent(data []byte) Name {
	return Name(sha3.Sum256(data))
}

// FromBytes copies b into a Name. b must be exactly Len bytes.
func FromBytes(b []byte) (Name, error) {
	var n Name
	if len(b) != Len {
		return n, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidName, len(b), Len)
	}
	copy(n[:], b)
	return n, nil
}

// Parse decodes the multibase text form produced by Name.String.
func Parse(s string) (Name, error) {
	_, b, err := multibase.Decode(s)
	if err != nil {
		return Name{}, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	return FromBytes(b)
}

// IsZero reports whether n is the all-zero name.
func (n Name) IsZero() bool { return n == Name{} }

// String returns the base32 multibase form of n.
func (n Name) String() string {
	s, err := multibase.Encode(multibase.Base32, n[:])
	if err != nil {
		// Base32 is always a supported encoding.
		return ""
	}
	return s
}

// Short returns the first six hex digits of n, for logs.
func (n Name) Short() string {
	return fmt.Sprintf("%x..", n[:3])
}

func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Name) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// Bit returns the i-th bit of n, counting from the most significant bit.
func (n Name) Bit(i int) bool {
	return n[i/8]&(0x80>>uint(i%8)) != 0
}

// Distance returns the XOR distance between n and other.
func (n Name) Distance(other Name) Name {
	var d Name
	for i := range n {
		d[i] = n[i] ^ other[i]
	}
	return d
}

// Closer reports whether a is strictly closer to n than b is.
func (n Name) Closer(a, b Name) bool {
	da, db := n.Distance(a), n.Distance(b)
	return bytes.Compare(da[:], db[:]) < 0
}
