package repo

import (
	"SecretKeeper/internal/model"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SnapshotRepository фиксирует состояние окружения после мутаций.
type SnapshotRepository interface {
	// TakeSnapshot сохраняет текущие (secret id, version) всех секретов окружения.
	TakeSnapshot(ctx context.Context, workspaceID, environment string, folderID *string) (*model.SecretSnapshot, error)
	Latest(ctx context.Context, workspaceID, environment string) (*model.SecretSnapshot, error)
}

type snapshotRepo struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) TakeSnapshot(ctx context.Context, workspaceID, environment string, folderID *string) (*model.SecretSnapshot, error) {
	var snap *model.SecretSnapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []model.Secret
		if err := (Scope{WorkspaceID: workspaceID, Environment: environment}).apply(tx).
			Select("id", "version").
			Order("id ASC").
			Find(&rows).Error; err != nil {
			return err
		}
		entries := make([]model.SnapshotEntry, 0, len(rows))
		for _, s := range rows {
			entries = append(entries, model.SnapshotEntry{SecretID: s.ID, Version: s.Version})
		}
		snap = &model.SecretSnapshot{
			ID:          uuid.NewString(),
			WorkspaceID: workspaceID,
			Environment: environment,
			FolderID:    folderID,
			Entries:     entries,
		}
		return tx.Create(snap).Error
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *snapshotRepo) Latest(ctx context.Context, workspaceID, environment string) (*model.SecretSnapshot, error) {
	var s model.SecretSnapshot
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND environment = ?", workspaceID, environment).
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
