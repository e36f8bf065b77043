package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store keeps ed25519 seeds on the local filesystem, one file per name.
type Store struct {
	Directory string
}

// DefaultDirectory returns ~/.seqnet/keys.
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".seqnet", "keys"), nil
}

// OpenStore returns a Store rooted at directory, or at DefaultDirectory when
// directory is empty.
func OpenStore(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Directory, name+".key")
}

// Init writes seed under name and returns its public key.
func (s *Store) Init(name string, seed []byte, overwrite bool) (PublicKey, string, error) {
	if err := CheckName(name); err != nil {
		return PublicKey{}, "", err
	}
	if len(seed) != ed25519.SeedSize {
		return PublicKey{}, "", fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	p := s.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return PublicKey{}, "", err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(p, flags, 0o600)
	if err != nil {
		return PublicKey{}, "", err
	}
	defer f.Close()
	if _, err := f.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return PublicKey{}, "", err
	}
	if err := f.Close(); err != nil {
		return PublicKey{}, "", err
	}
	pub, err := PublicKeyFromSeed(seed)
	return pub, p, err
}

// Seed loads the seed stored under name.
func (s *Store) Seed(name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(string(data))
}

// PublicKey loads the public key stored under name.
func (s *Store) PublicKey(name string) (PublicKey, error) {
	seed, err := s.Seed(name)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKeyFromSeed(seed)
}

// List returns the stored key names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".key") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".key"))
	}
	sort.Strings(names)
	return names, nil
}

// Signer loads the seed stored under name as an ed25519 Signer.
func (s *Store) Signer(name string) (Signer, error) {
	seed, err := s.Seed(name)
	if err != nil {
		return nil, err
	}
	return SignerFromSeed(seed)
}
