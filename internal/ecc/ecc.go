// Package ecc wraps the secp256k1 signing and verification primitives used
// by the challenge flow: SHA-256 digests over exact wire bytes and
// fixed-width r||s hex signatures.
package ecc

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ComponentHexLen is the hex length of each signature component (r and s)
// for the 256-bit curve.
const ComponentHexLen = 64

// Digest hashes the exact raw bytes of a signed payload. Callers must pass
// the wire string as received; re-serialized or pretty-printed forms produce
// a different digest and fail verification.
func Digest(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}

// SplitSignature splits a fixed-width signature into its r and s halves.
// Anything that is not exactly 2*ComponentHexLen characters is malformed.
func SplitSignature(sigHex string) (r, s string, ok bool) {
	if len(sigHex) != 2*ComponentHexLen {
		return "", "", false
	}
	return sigHex[:ComponentHexLen], sigHex[ComponentHexLen:], true
}

// Verify checks the r/s signature components over digest against the
// asserted public key. A malformed key, malformed component or mismatching
// digest yields false; Verify never panics past the caller.
func Verify(digest []byte, rHex, sHex, publicKeyHex string) bool {
	if len(rHex) != ComponentHexLen || len(sHex) != ComponentHexLen {
		return false
	}

	sig, err := hex.DecodeString(rHex + sHex)
	if err != nil {
		return false
	}

	pub, err := hex.DecodeString(strings.TrimPrefix(publicKeyHex, "0x"))
	if err != nil {
		return false
	}
	// VerifySignature expects a 33-byte compressed or 65-byte uncompressed key
	if len(pub) != 33 && len(pub) != 65 {
		return false
	}

	return crypto.VerifySignature(pub, digest, sig)
}

// Sign produces the r||s hex signature over digest with the issuer's
// long-lived key. The recovery byte is dropped: the wallet receives the
// public key alongside the signature and never needs to recover it.
func Sign(digest []byte, key *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig[:64]), nil
}

// LoadPrivateKey parses a hex-encoded secp256k1 private key.
func LoadPrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
}

// GenerateKey creates a fresh secp256k1 key pair.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// PublicKeyHex renders a public key in the uncompressed hex form carried in
// scan requests and callback payloads.
func PublicKeyHex(key *ecdsa.PublicKey) string {
	return hex.EncodeToString(crypto.FromECDSAPub(key))
}

// PrivateKeyHex renders a private key for configuration storage.
func PrivateKeyHex(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(crypto.FromECDSA(key))
}
