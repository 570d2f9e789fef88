package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// ResultFingerprint identifies the content of an analysis result
type ResultFingerprint Hash

func (h ResultFingerprint) String() string { return Hash(h).String() }

// ComputeResultFingerprint hashes the canonical JSON encoding of v.
// encoding/json sorts map keys, so equal values always produce equal fingerprints.
func ComputeResultFingerprint(v any) (ResultFingerprint, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return ResultFingerprint(NewHash(data)), nil
}
