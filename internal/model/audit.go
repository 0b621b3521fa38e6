package model

import "time"

// Имена аудит-действий.
const (
	ActionAddSecrets    = "ADD_SECRETS"
	ActionReadSecrets   = "READ_SECRETS"
	ActionUpdateSecrets = "UPDATE_SECRETS"
	ActionDeleteSecrets = "DELETE_SECRETS"
)

// AuditAction: одно действие над набором секретов.
type AuditAction struct {
	ID          string   `gorm:"primaryKey;type:uuid"`
	Name        string   `gorm:"not null"`
	ActorIDs    []string `gorm:"serializer:json"`
	WorkspaceID string   `gorm:"not null;index"`
	SecretIDs   []string `gorm:"serializer:json"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// AuditLog: запись журнала, связывающая действия с каналом запроса.
type AuditLog struct {
	ID          string   `gorm:"primaryKey;type:uuid"`
	ActorIDs    []string `gorm:"serializer:json"`
	WorkspaceID string   `gorm:"not null;index"`
	ActionIDs   []string `gorm:"serializer:json"`
	Channel     string
	IPAddress   string

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
