package repo

import (
	"SecretKeeper/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VersionRepository: история версий секретов.
type VersionRepository interface {
	AddVersions(ctx context.Context, versions []model.SecretVersion) error
	// MarkDeleted помечает все версии указанных секретов удалёнными.
	MarkDeleted(ctx context.Context, secretIDs []string) error
	ListBySecret(ctx context.Context, secretID string) ([]model.SecretVersion, error)
}

type versionRepo struct {
	db *gorm.DB
}

// NewVersionRepository создаёт репозиторий версий.
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepo{db: db}
}

func (r *versionRepo) AddVersions(ctx context.Context, versions []model.SecretVersion) error {
	if len(versions) == 0 {
		return nil
	}
	for i := range versions {
		if versions[i].ID == "" {
			versions[i].ID = uuid.NewString()
		}
	}
	return r.db.WithContext(ctx).Create(&versions).Error
}

func (r *versionRepo) MarkDeleted(ctx context.Context, secretIDs []string) error {
	if len(secretIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.SecretVersion{}).
		Where("secret_id IN ?", secretIDs).
		Update("is_deleted", true).Error
}

func (r *versionRepo) ListBySecret(ctx context.Context, secretID string) ([]model.SecretVersion, error) {
	var out []model.SecretVersion
	err := r.db.WithContext(ctx).
		Where("secret_id = ?", secretID).
		Order("version ASC").
		Find(&out).Error
	return out, err
}
