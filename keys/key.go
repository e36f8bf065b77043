package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/seqnet/xorname"
)

// Alg names a public key algorithm.
type Alg string

const (
	AlgEd25519    Alg = "ed25519"
	AlgDilithium3 Alg = "dilithium3"
)

var ErrInvalidKey = errors.New("keys: invalid public key")

// PublicKey is a comparable public key value. The zero value is the
// anonymous key and is not valid as an owner.
type PublicKey struct {
	alg Alg
	raw string
}

// FromEd25519 wraps an ed25519 public key.
func FromEd25519(pub ed25519.PublicKey) (PublicKey, error) {
	if len(pub) != ed25519.PublicKeySize {
		return PublicKey{}, fmt.Errorf("%w: ed25519 key length %d", ErrInvalidKey, len(pub))
	}
	return PublicKey{alg: AlgEd25519, raw: string(pub)}, nil
}

// FromDilithium3 wraps a dilithium3 public key.
func FromDilithium3(pub *mode3.PublicKey) (PublicKey, error) {
	if pub == nil {
		return PublicKey{}, fmt.Errorf("%w: nil dilithium3 key", ErrInvalidKey)
	}
	b, err := pub.MarshalBinary()
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return PublicKey{alg: AlgDilithium3, raw: string(b)}, nil
}

// GenerateDilithium3 returns a fresh dilithium3 public key and its private half.
func GenerateDilithium3(rand io.Reader) (PublicKey, *mode3.PrivateKey, error) {
	pk, sk, err := mode3.GenerateKey(rand)
	if err != nil {
		return PublicKey{}, nil, err
	}
	pub, err := FromDilithium3(pk)
	if err != nil {
		return PublicKey{}, nil, err
	}
	return pub, sk, nil
}

// Parse decodes the "<alg>:<base64>" form.
func Parse(s string) (PublicKey, error) {
	alg, enc, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return PublicKey{}, fmt.Errorf("%w: missing algorithm prefix", ErrInvalidKey)
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	switch Alg(alg) {
	case AlgEd25519:
		return FromEd25519(ed25519.PublicKey(raw))
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(raw); err != nil {
			return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return PublicKey{alg: AlgDilithium3, raw: string(raw)}, nil
	default:
		return PublicKey{}, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidKey, alg)
	}
}

// IsZero reports whether k is the anonymous key.
func (k PublicKey) IsZero() bool { return k.alg == "" }

func (k PublicKey) Alg() Alg { return k.alg }

// Bytes returns a copy of the raw key bytes.
func (k PublicKey) Bytes() []byte { return []byte(k.raw) }

// Name returns the content name of the key.
func (k PublicKey) Name() xorname.Name {
	return xorname.FromContent([]byte(k.raw))
}

func (k PublicKey) String() string {
	if k.IsZero() {
		return ""
	}
	return string(k.alg) + ":" + base64.StdEncoding.EncodeToString([]byte(k.raw))
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = PublicKey{}
		return nil
	}
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
