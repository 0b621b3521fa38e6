package model

import "time"

// SnapshotEntry: ссылка на версию секрета в снимке.
type SnapshotEntry struct {
	SecretID string `json:"secretId"`
	Version  int64  `json:"version"`
}

// SecretSnapshot: состояние окружения workspace после мутации.
type SecretSnapshot struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	WorkspaceID string `gorm:"not null;index"`
	Environment string `gorm:"not null"`
	FolderID    *string
	Entries     []SnapshotEntry `gorm:"serializer:json"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
