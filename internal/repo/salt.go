package repo

import (
	"SecretKeeper/internal/model"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaltRepository: доступ к соли blind index workspace.
type SaltRepository interface {
	// CreateIfAbsent пытается создать запись. Если для workspace она уже есть: ничего не делает.
	// Возвращает created=true если запись была создана в этой операции.
	CreateIfAbsent(ctx context.Context, salt *model.BlindIndexSalt) (created bool, err error)

	// GetByWorkspace возвращает запись или (nil, nil), если её нет.
	GetByWorkspace(ctx context.Context, workspaceID string) (*model.BlindIndexSalt, error)
}

type saltRepo struct {
	db *gorm.DB
}

// NewSaltRepository создаёт реализацию репозитория соли.
func NewSaltRepository(db *gorm.DB) SaltRepository {
	return &saltRepo{db: db}
}

func (r *saltRepo) CreateIfAbsent(ctx context.Context, salt *model.BlindIndexSalt) (bool, error) {
	if salt.ID == "" {
		salt.ID = uuid.NewString()
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workspace_id"}},
		DoNothing: true,
	}).Create(salt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *saltRepo) GetByWorkspace(ctx context.Context, workspaceID string) (*model.BlindIndexSalt, error) {
	var s model.BlindIndexSalt
	err := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
