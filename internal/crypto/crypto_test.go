package crypto

import (
	"SecretKeeper/internal/apperr"
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, KeyLen)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	for _, ivSize := range []int{IVSize, LegacyIVSize} {
		env, err := Encrypt([]byte("hello"), testKey(1), ivSize)
		require.NoError(t, err)

		iv, _ := base64.StdEncoding.DecodeString(env.IV)
		assert.Len(t, iv, ivSize)
		tag, _ := base64.StdEncoding.DecodeString(env.Tag)
		assert.Len(t, tag, 16)

		plain, err := Decrypt(env, testKey(1))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(plain))
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	a, err := Encrypt([]byte("same"), testKey(2), IVSize)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same"), testKey(2), IVSize)
	require.NoError(t, err)
	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestEncrypt_InvalidKeySize(t *testing.T) {
	_, err := Encrypt([]byte("x"), []byte("short"), IVSize)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestDecrypt_FailsClosed(t *testing.T) {
	env, err := Encrypt([]byte("secret"), testKey(3), IVSize)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := Decrypt(env, testKey(4))
		assert.ErrorIs(t, err, apperr.ErrCryptoIntegrity)
	})

	t.Run("tampered tag", func(t *testing.T) {
		bad := env
		tag, _ := base64.StdEncoding.DecodeString(env.Tag)
		tag[0] ^= 0xff
		bad.Tag = base64.StdEncoding.EncodeToString(tag)
		_, err := Decrypt(bad, testKey(3))
		assert.ErrorIs(t, err, apperr.ErrCryptoIntegrity)
	})

	t.Run("malformed base64", func(t *testing.T) {
		bad := env
		bad.Ciphertext = "%%%"
		_, err := Decrypt(bad, testKey(3))
		assert.ErrorIs(t, err, apperr.ErrCryptoIntegrity)
	})

	t.Run("bad iv size", func(t *testing.T) {
		bad := env
		bad.IV = base64.StdEncoding.EncodeToString([]byte{1, 2, 3})
		_, err := Decrypt(bad, testKey(3))
		assert.ErrorIs(t, err, apperr.ErrCryptoIntegrity)
	})

	t.Run("message does not leak key", func(t *testing.T) {
		_, err := Decrypt(env, testKey('k'))
		require.Error(t, err)
		assert.NotContains(t, err.Error(), string(testKey('k')))
	})
}
