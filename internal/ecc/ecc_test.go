package ecc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	digest := Digest(`{"DID":"did:example:alice","RandomNumber":"42"}`)

	sig, err := Sign(digest, key)
	require.NoError(t, err)
	require.Len(t, sig, 2*ComponentHexLen)

	r, s, ok := SplitSignature(sig)
	require.True(t, ok)

	assert.True(t, Verify(digest, r, s, PublicKeyHex(&key.PublicKey)))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	payload := `{"DID":"did:example:alice","RandomNumber":"42"}`
	sig, err := Sign(Digest(payload), key)
	require.NoError(t, err)

	r, s, ok := SplitSignature(sig)
	require.True(t, ok)

	// Flip one character of the signed payload
	tampered := strings.Replace(payload, "42", "43", 1)

	assert.False(t, Verify(Digest(tampered), r, s, PublicKeyHex(&key.PublicKey)))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)

	digest := Digest("payload")
	sig, err := Sign(digest, key)
	require.NoError(t, err)

	r, s, _ := SplitSignature(sig)

	assert.False(t, Verify(digest, r, s, PublicKeyHex(&other.PublicKey)))
}

func TestVerifyRejectsMalformedInputs(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	digest := Digest("payload")
	sig, err := Sign(digest, key)
	require.NoError(t, err)

	r, s, _ := SplitSignature(sig)
	pub := PublicKeyHex(&key.PublicKey)

	assert.False(t, Verify(digest, r[:10], s, pub), "short r component")
	assert.False(t, Verify(digest, r, s+"00", pub), "long s component")
	assert.False(t, Verify(digest, strings.Repeat("zz", 32), s, pub), "non-hex r component")
	assert.False(t, Verify(digest, r, s, "not-hex"), "malformed key")
	assert.False(t, Verify(digest, r, s, "04abcd"), "truncated key")
}

func TestSplitSignature(t *testing.T) {
	sig := strings.Repeat("a", 64) + strings.Repeat("b", 64)

	r, s, ok := SplitSignature(sig)
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("a", 64), r)
	assert.Equal(t, strings.Repeat("b", 64), s)

	_, _, ok = SplitSignature(sig[:100])
	assert.False(t, ok)

	_, _, ok = SplitSignature("")
	assert.False(t, ok)
}

func TestLoadPrivateKeyRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	loaded, err := LoadPrivateKey(PrivateKeyHex(key))
	require.NoError(t, err)

	assert.Equal(t, PublicKeyHex(&key.PublicKey), PublicKeyHex(&loaded.PublicKey))
}
