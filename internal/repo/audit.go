package repo

import (
	"SecretKeeper/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditRepository пишет аудит: сначала действие, затем запись журнала со ссылкой на него.
type AuditRepository interface {
	CreateAction(ctx context.Context, a *model.AuditAction) error
	CreateLog(ctx context.Context, l *model.AuditLog) error
	ListLogs(ctx context.Context, workspaceID string) ([]model.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) CreateAction(ctx context.Context, a *model.AuditAction) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auditRepo) CreateLog(ctx context.Context, l *model.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *auditRepo) ListLogs(ctx context.Context, workspaceID string) ([]model.AuditLog, error) {
	var out []model.AuditLog
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
