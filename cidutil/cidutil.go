// Package cidutil maps content names to IPFS-compatible CIDs and back.
//
// Chunks are addressed by CIDv1 with the "raw" multicodec and a sha3-256
// multihash, so the multihash digest of a chunk's CID is exactly the
// xorname.Name of its bytes.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/seqnet/xorname"
)

// ForName returns the CIDv1 (raw + sha3-256) whose digest is name.
func ForName(name xorname.Name) cid.Cid {
	mh, err := multihash.Encode(name[:], multihash.SHA3_256)
	if err != nil {
		// Encode only fails for unknown codes or oversized digests.
		return cid.Undef
	}
	return cid.NewCidV1(cid.Raw, multihash.Multihash(mh))
}

// ForChunk returns the CID of data.
func ForChunk(data []byte) cid.Cid {
	return ForName(xorname.FromContent(data))
}

// ForChunkString returns the string form of ForChunk(data).
func ForChunkString(data []byte) string {
	return ForChunk(data).String()
}

// Name extracts the content name from a CID produced by ForName.
func Name(id cid.Cid) (xorname.Name, error) {
	if !id.Defined() {
		return xorname.Name{}, fmt.Errorf("cidutil: undefined cid")
	}
	if id.Type() != cid.Raw {
		return xorname.Name{}, fmt.Errorf("cidutil: unexpected codec %#x", id.Type())
	}
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		return xorname.Name{}, fmt.Errorf("cidutil: %w", err)
	}
	if dec.Code != multihash.SHA3_256 {
		return xorname.Name{}, fmt.Errorf("cidutil: unexpected multihash %s", multihash.Codes[dec.Code])
	}
	return xorname.FromBytes(dec.Digest)
}

// Verify reports whether data hashes to id.
func Verify(id cid.Cid, data []byte) bool {
	want, err := Name(id)
	if err != nil {
		return false
	}
	return want == xorname.FromContent(data)
}
