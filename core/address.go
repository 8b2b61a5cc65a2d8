package core

// address.go - keypairs, address derivation and the mvm1... checksummed
// text encoding: Ed25519 keys, SHA-256 -> RIPEMD-160 for the 20-byte
// address, bech32-encoded with the mvm1 human-readable prefix.

import (
	"crypto/ed25519"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160"
)

// AddressPrefix is the human-readable part of every encoded address.
const AddressPrefix = "mvm"

// Address is a 20-byte account identifier. Equality is by raw bytes.
type Address [20]byte

// AddressZero is the all-zero address: the zero value of Address-typed
// contract variables, and what get_token returns when no token is linked.
var AddressZero = Address{}

// PublicKey and PrivateKey alias the stdlib Ed25519 types so callers don't
// need to import crypto/ed25519 directly.
type (
	PublicKey  = ed25519.PublicKey
	PrivateKey = ed25519.PrivateKey
)

// GenerateKeypair creates a fresh random Ed25519 keypair.
func GenerateKeypair() (PrivateKey, PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(crand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("mvm: generate keypair: %w", err)
	}
	return priv, pub, nil
}

// mnemonicEntropyBits controls the length of the recovery phrase: 256 bits
// of entropy produces a 24-word BIP-39 mnemonic.
const mnemonicEntropyBits = 256

// GenerateMnemonicKeypair creates a fresh Ed25519 keypair together with the
// BIP-39 recovery phrase it was derived from, for wallets that need a
// human-writable backup rather than a raw seed.
func GenerateMnemonicKeypair() (PrivateKey, PublicKey, string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return nil, nil, "", fmt.Errorf("mvm: generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, nil, "", fmt.Errorf("mvm: generate mnemonic: %w", err)
	}
	priv, pub, err := KeypairFromMnemonic(mnemonic, "")
	return priv, pub, mnemonic, err
}

// KeypairFromMnemonic deterministically re-derives an Ed25519 keypair from
// a BIP-39 mnemonic and optional passphrase, the wallet-recovery path.
func KeypairFromMnemonic(mnemonic, passphrase string) (PrivateKey, PublicKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, nil, fmt.Errorf("mvm: invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	priv := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	pub := priv.Public().(ed25519.PublicKey)
	return priv, pub, nil
}

// DeriveAddress computes Address = RIPEMD160(SHA256(pub)).
func DeriveAddress(pub PublicKey) Address {
	sum := sha256Sum(pub)
	r := ripemd160.New()
	r.Write(sum[:])
	var out Address
	copy(out[:], r.Sum(nil))
	return out
}

// String renders the address with the bech32 "mvm1..." checksummed
// encoding used throughout the wire and read surfaces.
func (a Address) String() string {
	data, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		// 20-byte input can never fail bit-regrouping.
		panic(err)
	}
	enc, err := bech32.Encode(AddressPrefix, data)
	if err != nil {
		panic(err)
	}
	return enc
}

// ParseAddress decodes and checksum-validates a bech32 "mvm1..." string.
func ParseAddress(s string) (Address, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	if hrp != AddressPrefix {
		return Address{}, fmt.Errorf("%w: wrong prefix %q", ErrBadAddress, hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(raw) != 20 {
		return Address{}, fmt.Errorf("%w: malformed payload", ErrBadAddress)
	}
	var out Address
	copy(out[:], raw)
	return out, nil
}

// Hex returns the raw hex form, mainly for logs and storage keys.
func (a Address) Hex() string { return hex.EncodeToString(a[:]) }

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == AddressZero }

// Bytes returns the address as a fresh byte slice.
func (a Address) Bytes() []byte {
	out := make([]byte, len(a))
	copy(out, a[:])
	return out
}

// Sign signs digest with priv, matching the 64-byte Ed25519 signature
// layout required by the canonical transaction form.
func Sign(priv PrivateKey, digest Hash) []byte {
	return ed25519.Sign(priv, digest[:])
}

// VerifySignature checks an Ed25519 signature, that pub is well-formed,
// and that pub derives to `from`.
func VerifySignature(pub PublicKey, digest Hash, sig []byte, from Address) error {
	if len(pub) != ed25519.PublicKeySize {
		return ErrBadAddress
	}
	if DeriveAddress(pub) != from {
		return ErrSignerMismatch
	}
	if len(sig) != ed25519.SignatureSize || !ed25519.Verify(pub, digest[:], sig) {
		return ErrBadSignature
	}
	return nil
}
