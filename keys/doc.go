// Package keys provides the principal public keys used by Sequence owners
// and permission entries.
//
// Keys have a stable text form "<alg>:<base64>" where alg is one of
// "ed25519" or "dilithium3". The content name of a key is the sha3-256 of
// its raw bytes.
//
// The filesystem seed store (Store) is a local convenience for the CLI and is
// not part of the network contract.
package keys
