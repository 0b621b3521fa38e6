package model

import "time"

// SecretType различает общий секрет и персональное переопределение.
type SecretType string

const (
	SecretTypeShared   SecretType = "shared"
	SecretTypePersonal SecretType = "personal"
)

// Valid проверяет, что тип известен.
func (t SecretType) Valid() bool {
	return t == SecretTypeShared || t == SecretTypePersonal
}

// EncryptedField: шифртекст с параметрами аутентификации (base64).
type EncryptedField struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	Tag        string `json:"tag"`
}

// Empty: поле не задано.
func (f EncryptedField) Empty() bool {
	return f.Ciphertext == "" && f.IV == "" && f.Tag == ""
}

// Secret: серверная модель зашифрованного секрета.
// Идентичность: (workspace, environment, type, blind index, owner). Для shared owner пустой.
// Имя секрета в открытом виде не хранится.
type Secret struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	WorkspaceID string     `gorm:"not null;uniqueIndex:idx_secret_identity,priority:1" json:"workspaceId"`
	Environment string     `gorm:"not null;uniqueIndex:idx_secret_identity,priority:2" json:"environment"`
	Type        SecretType `gorm:"type:varchar(16);not null;uniqueIndex:idx_secret_identity,priority:3" json:"type"`
	BlindIndex  string     `gorm:"column:secret_blind_index;not null;uniqueIndex:idx_secret_identity,priority:4" json:"-"`
	OwnerUserID string     `gorm:"not null;uniqueIndex:idx_secret_identity,priority:5" json:"user,omitempty"`

	Version int64 `gorm:"not null;default:1" json:"version"`

	SecretKey     EncryptedField `gorm:"embedded;embeddedPrefix:secret_key_" json:"secretKey"`
	SecretValue   EncryptedField `gorm:"embedded;embeddedPrefix:secret_value_" json:"secretValue"`
	SecretComment EncryptedField `gorm:"embedded;embeddedPrefix:secret_comment_" json:"secretComment"`

	Algorithm   string      `gorm:"not null" json:"algorithm"`
	KeyEncoding KeyEncoding `gorm:"type:varchar(16);not null" json:"keyEncoding"`

	FolderID *string `gorm:"index" json:"folderId,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Ownership восстанавливает вариант записи по дискриминатору.
func (s *Secret) Ownership() Ownership {
	if s.Type == SecretTypePersonal {
		return Personal{UserID: s.OwnerUserID}
	}
	return Shared{}
}

// Payload: зашифрованное содержимое секрета, которое присылает клиент.
type Payload struct {
	SecretKey     EncryptedField
	SecretValue   EncryptedField
	SecretComment EncryptedField
}
