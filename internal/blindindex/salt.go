// Package blindindex вычисляет blind index имён секретов: argon2id от имени
// на соли workspace. Соль хранится зашифрованной ключом сервера.
package blindindex

import (
	"SecretKeeper/internal/apperr"
	"SecretKeeper/internal/crypto"
	"SecretKeeper/internal/keys"
	"SecretKeeper/internal/model"
	"SecretKeeper/internal/repo"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
)

// SaltLen: длина соли в байтах.
const SaltLen = 16

// SaltStore создаёт и расшифровывает соль workspace.
type SaltStore struct {
	repo repo.SaltRepository
	keys *keys.Provider
}

func NewSaltStore(r repo.SaltRepository, p *keys.Provider) *SaltStore {
	return &SaltStore{repo: r, keys: p}
}

// Create генерирует соль и шифрует её предпочтительным ключом.
// Повторный вызов для того же workspace: apperr.ErrSaltAlreadyExists.
func (s *SaltStore) Create(ctx context.Context, workspaceID string) error {
	raw := make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	// шифруется base64-представление соли
	encoded := []byte(base64.StdEncoding.EncodeToString(raw))
	memguard.WipeBytes(raw)
	defer memguard.WipeBytes(encoded)

	enc := s.keys.Preferred()
	key, err := s.keys.KeyFor(enc)
	if err != nil {
		return err
	}
	env, err := crypto.Encrypt(encoded, key.Bytes(), keys.IVSize(enc))
	key.Destroy()
	if err != nil {
		return fmt.Errorf("encrypt salt: %w", err)
	}

	created, err := s.repo.CreateIfAbsent(ctx, &model.BlindIndexSalt{
		WorkspaceID:   workspaceID,
		EncryptedSalt: env.Ciphertext,
		IV:            env.IV,
		Tag:           env.Tag,
		Algorithm:     crypto.AlgorithmAES256GCM,
		KeyEncoding:   enc,
	})
	if err != nil {
		return fmt.Errorf("store salt: %w", err)
	}
	if !created {
		return apperr.ErrSaltAlreadyExists
	}
	return nil
}

// GetDecryptedSalt возвращает сырую соль workspace. Вызывающий может затереть её после использования.
// Ключ выбирается строго по KeyEncoding записи.
func (s *SaltStore) GetDecryptedSalt(ctx context.Context, workspaceID string) ([]byte, error) {
	rec, err := s.repo.GetByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load salt: %w", err)
	}
	if rec == nil {
		return nil, apperr.ErrSaltDataNotFound
	}

	var key *memguard.LockedBuffer
	switch {
	case rec.KeyEncoding == model.KeyEncodingRootBase64 && s.keys.HasRoot():
		key, err = s.keys.RootKey()
	case rec.KeyEncoding == model.KeyEncodingLegacyUTF8 && s.keys.HasLegacy():
		key, err = s.keys.LegacyKey()
	default:
		return nil, apperr.ErrWorkspaceSalt
	}
	if err != nil {
		// ключ сняли между проверкой и открытием (reload)
		return nil, fmt.Errorf("%w: %v", apperr.ErrWorkspaceSalt, err)
	}
	defer key.Destroy()

	plain, err := crypto.Decrypt(crypto.Envelope{
		Ciphertext: rec.EncryptedSalt,
		IV:         rec.IV,
		Tag:        rec.Tag,
	}, key.Bytes())
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(plain)

	salt, err := base64.StdEncoding.DecodeString(string(plain))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed salt", apperr.ErrCryptoIntegrity)
	}
	return salt, nil
}
