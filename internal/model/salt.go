package model

import "time"

// KeyEncoding: каким ключом зашифрована запись.
type KeyEncoding string

const (
	// KeyEncodingLegacyUTF8: legacy-ключ (ENCRYPTION_KEY), 16-байтный IV.
	KeyEncodingLegacyUTF8 KeyEncoding = "legacy-utf8"
	// KeyEncodingRootBase64: root-ключ (ROOT_ENCRYPTION_KEY), 12-байтный IV.
	KeyEncodingRootBase64 KeyEncoding = "root-base64"
)

// BlindIndexSalt: зашифрованная соль blind index, одна на workspace. Не меняется после создания.
type BlindIndexSalt struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	WorkspaceID string `gorm:"not null;uniqueIndex"`

	EncryptedSalt string `gorm:"not null"`
	IV            string `gorm:"not null"`
	Tag           string `gorm:"not null"`

	Algorithm   string      `gorm:"not null"`
	KeyEncoding KeyEncoding `gorm:"type:varchar(16);not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
