package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

var ErrBadSignature = errors.New("keys: signature does not verify")

// Signer signs messages on behalf of one public key.
type Signer interface {
	PublicKey() PublicKey
	Sign(message []byte) ([]byte, error)
}

// Both algorithms sign sha3-256(message).
func digest(message []byte) []byte {
	s := sha3.Sum256(message)
	return s[:]
}

type ed25519Signer struct {
	pub  PublicKey
	priv ed25519.PrivateKey
}

// SignerFromSeed returns the ed25519 Signer for a 32-byte seed.
func SignerFromSeed(seed []byte) (Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub, err := FromEd25519(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &ed25519Signer{pub: pub, priv: priv}, nil
}

func (s *ed25519Signer) PublicKey() PublicKey { return s.pub }

func (s *ed25519Signer) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, digest(message)), nil
}

type dilithium3Signer struct {
	pub  PublicKey
	priv *mode3.PrivateKey
}

// NewDilithium3Signer wraps a dilithium3 private key.
func NewDilithium3Signer(priv *mode3.PrivateKey) (Signer, error) {
	if priv == nil {
		return nil, fmt.Errorf("missing private key")
	}
	pub, err := FromDilithium3(priv.Public().(*mode3.PublicKey))
	if err != nil {
		return nil, err
	}
	return &dilithium3Signer{pub: pub, priv: priv}, nil
}

func (s *dilithium3Signer) PublicKey() PublicKey { return s.pub }

func (s *dilithium3Signer) Sign(message []byte) ([]byte, error) {
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, digest(message), sig)
	return sig, nil
}

// Verify checks sig over message against k. It returns ErrBadSignature when
// the signature does not match and ErrInvalidKey for unusable keys.
func Verify(k PublicKey, message, sig []byte) error {
	switch k.alg {
	case AlgEd25519:
		if len(sig) != ed25519.SignatureSize || !ed25519.Verify(ed25519.PublicKey(k.raw), digest(message), sig) {
			return ErrBadSignature
		}
		return nil
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary([]byte(k.raw)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		if len(sig) != mode3.SignatureSize || !mode3.Verify(&pk, digest(message), sig) {
			return ErrBadSignature
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot verify with the anonymous key", ErrInvalidKey)
	}
}
