package model

import "time"

// SecretVersion: снимок секрета на момент создания или обновления.
type SecretVersion struct {
	ID       string `gorm:"primaryKey;type:uuid"`
	SecretID string `gorm:"not null;index"`
	Version  int64  `gorm:"not null"`

	WorkspaceID string     `gorm:"not null;index"`
	Environment string     `gorm:"not null"`
	Type        SecretType `gorm:"type:varchar(16);not null"`
	OwnerUserID string
	FolderID    *string

	IsDeleted  bool   `gorm:"not null;default:false"`
	BlindIndex string `gorm:"column:secret_blind_index;not null" json:"-"`

	SecretKey   EncryptedField `gorm:"embedded;embeddedPrefix:secret_key_"`
	SecretValue EncryptedField `gorm:"embedded;embeddedPrefix:secret_value_"`

	Algorithm   string      `gorm:"not null"`
	KeyEncoding KeyEncoding `gorm:"type:varchar(16);not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// NewSecretVersion снимает версию с записи секрета.
func NewSecretVersion(s *Secret) SecretVersion {
	return SecretVersion{
		SecretID:    s.ID,
		Version:     s.Version,
		WorkspaceID: s.WorkspaceID,
		Environment: s.Environment,
		Type:        s.Type,
		OwnerUserID: s.OwnerUserID,
		FolderID:    s.FolderID,
		IsDeleted:   false,
		BlindIndex:  s.BlindIndex,
		SecretKey:   s.SecretKey,
		SecretValue: s.SecretValue,
		Algorithm:   s.Algorithm,
		KeyEncoding: s.KeyEncoding,
	}
}
