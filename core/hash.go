package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash is a 32-byte digest used for transaction and block identifiers.
type Hash [32]byte

// ZeroHash is the block-genesis prev_hash sentinel.
var ZeroHash = Hash{}

func (h Hash) Bytes() []byte { return h[:] }
func (h Hash) Hex() string   { return hex.EncodeToString(h[:]) }
func (h Hash) IsZero() bool  { return h == ZeroHash }

func (h Hash) Short() string {
	s := h.Hex()
	if len(s) <= 12 {
		return s
	}
	return s[:6] + ".." + s[len(s)-6:]
}

func sha256Sum(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// HashBytes exposes the canonical digest function for data outside a
// transaction/block (e.g. deterministic token/contract addresses).
func HashBytes(parts ...[]byte) Hash {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}
