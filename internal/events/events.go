// Package events: побочные эффекты операций с секретами (версии, аудит, снимки, телеметрия).
// Операция возвращает список событий, который публикуется только после фиксации основной записи.
package events

import "SecretKeeper/internal/model"

// Kind: тип побочного эффекта.
type Kind string

const (
	KindVersionsAdded     Kind = "versions_added"
	KindVersionsDeleted   Kind = "versions_deleted"
	KindAuditLogged       Kind = "audit_logged"
	KindSnapshotRequested Kind = "snapshot_requested"
	KindTelemetryCaptured Kind = "telemetry_captured"
)

// Имена событий телеметрии.
const (
	TelemetrySecretsAdded    = "secrets added"
	TelemetrySecretsPulled   = "secrets pulled"
	TelemetrySecretsPull     = "secrets pull"
	TelemetrySecretsModified = "secrets modified"
	TelemetrySecretsDeleted  = "secrets deleted"
)

// TelemetryProperties: свойства события телеметрии.
type TelemetryProperties struct {
	NumberOfSecrets int    `json:"numberOfSecrets"`
	Environment     string `json:"environment"`
	WorkspaceID     string `json:"workspaceId"`
	Channel         string `json:"channel"`
	UserAgent       string `json:"userAgent"`
}

// TelemetryEvent: событие для сборщика телеметрии.
type TelemetryEvent struct {
	Event      string              `json:"event"`
	DistinctID string              `json:"distinctId"`
	Properties TelemetryProperties `json:"properties"`
}

// AuditEntry: одно аудит-действие с контекстом запроса.
type AuditEntry struct {
	Action    string
	SecretIDs []string
	Actor     model.Actor
}

// Event: один побочный эффект. Заполнены только поля, относящиеся к Kind.
type Event struct {
	Kind        Kind
	WorkspaceID string
	Environment string
	FolderID    *string

	Versions  []model.SecretVersion
	SecretIDs []string
	Audit     *AuditEntry
	Telemetry *TelemetryEvent
}

// VersionsAdded: записать версии секретов.
func VersionsAdded(workspaceID string, versions []model.SecretVersion) Event {
	return Event{Kind: KindVersionsAdded, WorkspaceID: workspaceID, Versions: versions}
}

// VersionsDeleted: пометить удалёнными все версии секретов.
func VersionsDeleted(workspaceID string, secretIDs []string) Event {
	return Event{Kind: KindVersionsDeleted, WorkspaceID: workspaceID, SecretIDs: secretIDs}
}

// AuditLogged: действие и запись журнала.
func AuditLogged(workspaceID, action string, secretIDs []string, actor model.Actor) Event {
	return Event{
		Kind:        KindAuditLogged,
		WorkspaceID: workspaceID,
		Audit:       &AuditEntry{Action: action, SecretIDs: secretIDs, Actor: actor},
	}
}

// SnapshotRequested: снять снимок окружения.
func SnapshotRequested(workspaceID, environment string, folderID *string) Event {
	return Event{Kind: KindSnapshotRequested, WorkspaceID: workspaceID, Environment: environment, FolderID: folderID}
}

// TelemetryCaptured: событие телеметрии от имени актора.
func TelemetryCaptured(name string, count int, workspaceID, environment string, actor model.Actor) Event {
	return Event{
		Kind:        KindTelemetryCaptured,
		WorkspaceID: workspaceID,
		Environment: environment,
		Telemetry: &TelemetryEvent{
			Event:      name,
			DistinctID: actor.UserID,
			Properties: TelemetryProperties{
				NumberOfSecrets: count,
				Environment:     environment,
				WorkspaceID:     workspaceID,
				Channel:         actor.Channel,
				UserAgent:       actor.UserAgent,
			},
		},
	}
}
