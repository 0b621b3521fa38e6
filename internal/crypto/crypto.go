package crypto

import (
	"SecretKeeper/internal/apperr"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// AlgorithmAES256GCM: идентификатор алгоритма, который пишется в записи.
const AlgorithmAES256GCM = "aes-256-gcm"

const (
	// KeyLen: длина ключа для AES‑256 (в байтах).
	KeyLen = 32
	// IVSize: nonce для ключей root-base64.
	IVSize = 12
	// LegacyIVSize: nonce для legacy-utf8 ключей (так исторически шифровались записи).
	LegacyIVSize = 16

	tagSize = 16
)

// ErrInvalidKeySize: ключ не подходит для AES‑256.
var ErrInvalidKeySize = errors.New("invalid key size")

// Envelope: результат шифрования. Все поля в base64.
type Envelope struct {
	Ciphertext string
	IV         string
	Tag        string
}

func newGCM(key []byte, ivSize int) (cipher.AEAD, error) {
	if len(key) != KeyLen {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if ivSize == IVSize {
		return cipher.NewGCM(block)
	}
	return cipher.NewGCMWithNonceSize(block, ivSize)
}

// Encrypt шифрует plaintext с помощью AES‑GCM. IV генерируется заново на каждый вызов,
// tag отделяется от шифртекста.
func Encrypt(plaintext, key []byte, ivSize int) (Envelope, error) {
	gcm, err := newGCM(key, ivSize)
	if err != nil {
		return Envelope{}, err
	}
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Envelope{}, err
	}
	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return Envelope{
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		IV:         base64.StdEncoding.EncodeToString(iv),
		Tag:        base64.StdEncoding.EncodeToString(tag),
	}, nil
}

// Decrypt расшифровывает конверт. Размер nonce берётся из длины IV.
// Любая ошибка (битый base64, неверный tag, чужой ключ): apperr.ErrCryptoIntegrity.
func Decrypt(env Envelope, key []byte) ([]byte, error) {
	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext", apperr.ErrCryptoIntegrity)
	}
	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil || (len(iv) != IVSize && len(iv) != LegacyIVSize) {
		return nil, fmt.Errorf("%w: malformed iv", apperr.ErrCryptoIntegrity)
	}
	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil || len(tag) != tagSize {
		return nil, fmt.Errorf("%w: malformed tag", apperr.ErrCryptoIntegrity)
	}

	gcm, err := newGCM(key, len(iv))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCryptoIntegrity, err)
	}
	plain, err := gcm.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: message authentication failed", apperr.ErrCryptoIntegrity)
	}
	return plain, nil
}
