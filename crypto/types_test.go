package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)
	require.Len(t, pub.Bytes(), 32)
	require.Len(t, priv.Bytes(), 64)

	derived, err := priv.PublicKey()
	require.NoError(t, err)
	require.True(t, pub.Equal(derived))
}

func TestSignVerify(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	data := []byte("negotiate/commit exchange payload")
	sig, err := Sign(priv, data)
	require.NoError(t, err)
	require.True(t, sig.Verify(pub, data))

	// Any altered byte must invalidate the signature.
	tampered := append([]byte(nil), data...)
	tampered[0] ^= 0x01
	require.False(t, sig.Verify(pub, tampered))

	flipped := NewSignature(sig.Bytes())
	flipped[0] ^= 0x01
	require.False(t, flipped.Verify(pub, data))

	otherPub, _, err := GenerateKeyPair()
	require.NoError(t, err)
	require.False(t, sig.Verify(otherPub, data))
}

func TestSignRejectsShortKey(t *testing.T) {
	_, err := Sign(PrivateKey([]byte("short")), []byte("data"))
	require.Error(t, err)
}

func TestKeyHexRoundTrip(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	pub2, err := NewPublicKeyFromString(pub.String())
	require.NoError(t, err)
	require.True(t, pub.Equal(pub2))

	priv2, err := NewPrivateKeyFromString(priv.String())
	require.NoError(t, err)
	require.Equal(t, priv.Bytes(), priv2.Bytes())
}

func TestVerifyRejectsMalformedPublicKey(t *testing.T) {
	_, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	sig, err := Sign(priv, []byte("data"))
	require.NoError(t, err)
	require.False(t, sig.Verify(PublicKey([]byte("not-a-key")), []byte("data")))
}
