package core

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// Hash represents a Blake3 hash value
type Hash [32]byte

// String returns the hexadecimal representation of the hash
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 7 characters of the hash
func (h Hash) Short() string {
	return h.String()[:7]
}

// MarshalText encodes the hash as lowercase hex
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes a hex hash produced by MarshalText
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HashBytes computes the Blake3 hash of a byte slice
func HashBytes(data []byte) Hash {
	return blake3.Sum256(data)
}

// HashStrings hashes an ordered list of strings. Each part is length-prefixed, so
// ("ab", "c") and ("a", "bc") never collide.
func HashStrings(parts ...string) Hash {
	hasher := blake3.New()
	var size [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(p)))
		hasher.Write(size[:])
		io.WriteString(hasher, p)
	}

	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// ParseHash parses a hex string into a Hash
func ParseHash(s string) (Hash, error) {
	var hash Hash
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return hash, ErrInvalidHash
	}
	if len(bytes) != 32 {
		return hash, ErrInvalidHash
	}
	copy(hash[:], bytes)
	return hash, nil
}

// IsZero returns true if the hash is all zeros
func (h Hash) IsZero() bool {
	return h == Hash{}
}
