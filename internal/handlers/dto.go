package handlers

import (
	"SecretKeeper/internal/model"
	"time"
)

// SecretDTO: секрет в ответе API. Blind index наружу не отдаётся.
type SecretDTO struct {
	ID            string               `json:"id"`
	WorkspaceID   string               `json:"workspace"`
	Environment   string               `json:"environment"`
	Type          model.SecretType     `json:"type"`
	User          string               `json:"user,omitempty"`
	Version       int64                `json:"version"`
	SecretKey     model.EncryptedField `json:"secretKey"`
	SecretValue   model.EncryptedField `json:"secretValue"`
	SecretComment model.EncryptedField `json:"secretComment"`
	Algorithm     string               `json:"algorithm"`
	KeyEncoding   model.KeyEncoding    `json:"keyEncoding"`
	FolderID      *string              `json:"folderId,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func toDTO(s *model.Secret) SecretDTO {
	return SecretDTO{
		ID:            s.ID,
		WorkspaceID:   s.WorkspaceID,
		Environment:   s.Environment,
		Type:          s.Type,
		User:          s.OwnerUserID,
		Version:       s.Version,
		SecretKey:     s.SecretKey,
		SecretValue:   s.SecretValue,
		SecretComment: s.SecretComment,
		Algorithm:     s.Algorithm,
		KeyEncoding:   s.KeyEncoding,
		FolderID:      s.FolderID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toDTOs(list []model.Secret) []SecretDTO {
	out := make([]SecretDTO, 0, len(list))
	for i := range list {
		out = append(out, toDTO(&list[i]))
	}
	return out
}

// CreateSecretRequest: тело POST /api/v1/secrets/{secretName}.
type CreateSecretRequest struct {
	WorkspaceID   string               `json:"workspaceId"`
	Environment   string               `json:"environment"`
	Type          model.SecretType     `json:"type"`
	SecretKey     model.EncryptedField `json:"secretKey"`
	SecretValue   model.EncryptedField `json:"secretValue"`
	SecretComment model.EncryptedField `json:"secretComment"`
	FolderID      *string              `json:"folderId,omitempty"`
}

// UpdateSecretRequest: тело PATCH /api/v1/secrets/{secretName}.
type UpdateSecretRequest struct {
	WorkspaceID string               `json:"workspaceId"`
	Environment string               `json:"environment"`
	Type        model.SecretType     `json:"type"`
	SecretValue model.EncryptedField `json:"secretValue"`
}

// DeleteSecretRequest: тело DELETE /api/v1/secrets/{secretName}.
type DeleteSecretRequest struct {
	WorkspaceID string           `json:"workspaceId"`
	Environment string           `json:"environment"`
	Type        model.SecretType `json:"type"`
}

// BatchReadRequest: тело POST /api/v1/secrets/batch.
type BatchReadRequest struct {
	WorkspaceID string   `json:"workspaceId"`
	Environment string   `json:"environment"`
	SecretNames []string `json:"secretNames"`
}

type secretResponse struct {
	Secret SecretDTO `json:"secret"`
}

type secretsResponse struct {
	Secrets []SecretDTO `json:"secrets"`
}

type deleteResponse struct {
	Secret  SecretDTO   `json:"secret"`
	Deleted []SecretDTO `json:"deleted"`
}

type bootstrapResponse struct {
	WorkspaceID string `json:"workspaceId"`
	Created     bool   `json:"created"`
}

type errorResponse struct {
	Error string `json:"error"`
}
