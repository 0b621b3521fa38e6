// Package keys хранит ключевой материал сервера: legacy-ключ (ENCRYPTION_KEY)
// и root-ключ (ROOT_ENCRYPTION_KEY). Ключи лежат в memguard-анклавах и
// отдаются вызывающему только как LockedBuffer.
package keys

import (
	"SecretKeeper/internal/apperr"
	"SecretKeeper/internal/crypto"
	"SecretKeeper/internal/model"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

var (
	ErrInvalidLegacyKey = errors.New("legacy encryption key must be 32 bytes")
	ErrInvalidRootKey   = errors.New("root encryption key must be base64 of 32 bytes")
)

// Provider: источник ключей. Создаётся один раз при старте и передаётся в компоненты.
type Provider struct {
	mu     sync.RWMutex
	legacy *memguard.Enclave
	root   *memguard.Enclave
}

// New проверяет и запечатывает ключи. Хотя бы один ключ обязателен.
func New(legacy, root string) (*Provider, error) {
	p := &Provider{}
	if err := p.Reload(legacy, root); err != nil {
		return nil, err
	}
	return p, nil
}

func sealKeys(legacy, root string) (*memguard.Enclave, *memguard.Enclave, error) {
	if legacy == "" && root == "" {
		return nil, nil, apperr.ErrKeyNotConfigured
	}

	var legacyEnc, rootEnc *memguard.Enclave
	if legacy != "" {
		// legacy-ключ: строка из 32 символов, используемая как сырые байты
		if len(legacy) != crypto.KeyLen {
			return nil, nil, ErrInvalidLegacyKey
		}
		legacyEnc = memguard.NewEnclave([]byte(legacy))
	}
	if root != "" {
		raw, err := base64.StdEncoding.DecodeString(root)
		if err != nil || len(raw) != crypto.KeyLen {
			return nil, nil, ErrInvalidRootKey
		}
		// NewEnclave затирает исходный буфер
		rootEnc = memguard.NewEnclave(raw)
	}
	return legacyEnc, rootEnc, nil
}

// Reload атомарно заменяет ключи. При ошибке текущие ключи остаются как были.
func (p *Provider) Reload(legacy, root string) error {
	legacyEnc, rootEnc, err := sealKeys(legacy, root)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.legacy, p.root = legacyEnc, rootEnc
	p.mu.Unlock()
	return nil
}

func open(enc *memguard.Enclave) (*memguard.LockedBuffer, error) {
	if enc == nil {
		return nil, apperr.ErrKeyNotConfigured
	}
	buf, err := enc.Open()
	if err != nil {
		return nil, fmt.Errorf("open key enclave: %w", err)
	}
	return buf, nil
}

// LegacyKey возвращает legacy-ключ. Вызывающий обязан вызвать Destroy у буфера.
func (p *Provider) LegacyKey() (*memguard.LockedBuffer, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return open(p.legacy)
}

// RootKey возвращает root-ключ. Вызывающий обязан вызвать Destroy у буфера.
func (p *Provider) RootKey() (*memguard.LockedBuffer, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return open(p.root)
}

// HasLegacy сообщает, сконфигурирован ли legacy-ключ.
func (p *Provider) HasLegacy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.legacy != nil
}

// HasRoot сообщает, сконфигурирован ли root-ключ.
func (p *Provider) HasRoot() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root != nil
}

// Preferred возвращает кодировку для новых записей: root при наличии, иначе legacy.
func (p *Provider) Preferred() model.KeyEncoding {
	if p.HasRoot() {
		return model.KeyEncodingRootBase64
	}
	return model.KeyEncodingLegacyUTF8
}

// KeyFor возвращает ключ, которым расшифровываются записи с указанной кодировкой.
// Подмены одного типа ключа другим нет: это дало бы неверные blind index.
func (p *Provider) KeyFor(enc model.KeyEncoding) (*memguard.LockedBuffer, error) {
	switch enc {
	case model.KeyEncodingRootBase64:
		return p.RootKey()
	case model.KeyEncodingLegacyUTF8:
		return p.LegacyKey()
	default:
		return nil, fmt.Errorf("unknown key encoding %q", enc)
	}
}

// IVSize: размер nonce для кодировки.
func IVSize(enc model.KeyEncoding) int {
	if enc == model.KeyEncodingLegacyUTF8 {
		return crypto.LegacyIVSize
	}
	return crypto.IVSize
}

// Destroy снимает ссылки на анклавы. Вызывается при остановке процесса вместе с memguard.Purge.
func (p *Provider) Destroy() {
	p.mu.Lock()
	p.legacy, p.root = nil, nil
	p.mu.Unlock()
}
