package repo

import (
	"SecretKeeper/internal/apperr"
	"SecretKeeper/internal/model"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Identity: ключ записи секрета в пределах workspace и окружения.
type Identity struct {
	WorkspaceID string
	Environment string
	BlindIndex  string
	Ownership   model.Ownership
}

// Scope: workspace + окружение.
type Scope struct {
	WorkspaceID string
	Environment string
}

func (s Scope) apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id = ? AND environment = ?", s.WorkspaceID, s.Environment)
}

func (id Identity) apply(db *gorm.DB) *gorm.DB {
	q := db.Where("workspace_id = ? AND environment = ? AND secret_blind_index = ?",
		id.WorkspaceID, id.Environment, id.BlindIndex)
	switch o := id.Ownership.(type) {
	case model.Personal:
		q = q.Where("type = ? AND owner_user_id = ?", model.SecretTypePersonal, o.UserID)
	case model.Shared:
		q = q.Where("type = ?", model.SecretTypeShared)
	}
	return q
}

// SecretRepository: хранилище зашифрованных секретов.
// Поиск возвращает (nil, nil), если запись не найдена.
type SecretRepository interface {
	Exists(ctx context.Context, id Identity) (bool, error)
	FindOne(ctx context.Context, id Identity) (*model.Secret, error)

	// FindPersonal: все персональные секреты пользователя в окружении.
	FindPersonal(ctx context.Context, scope Scope, userID string) ([]model.Secret, error)
	// FindSharedExcluding: общие секреты, чьи blind index не входят в exclude.
	FindSharedExcluding(ctx context.Context, scope Scope, exclude []string) ([]model.Secret, error)
	// FindByBlindIndexes: общие и персональные (userID) секреты с указанными blind index.
	FindByBlindIndexes(ctx context.Context, scope Scope, blindIndexes []string, userID string) ([]model.Secret, error)

	// Insert создаёт запись. Дубликат идентичности: apperr.ErrSecretAlreadyExists.
	Insert(ctx context.Context, s *model.Secret) error
	// UpdateValue атомарно меняет значение и увеличивает version.
	UpdateValue(ctx context.Context, id Identity, value model.EncryptedField) (*model.Secret, error)
	// DeleteOne удаляет одну запись и возвращает её.
	DeleteOne(ctx context.Context, id Identity) (*model.Secret, error)
	// DeleteCascade удаляет общий секрет и все записи с тем же blind index в окружении, независимо от типа.
	DeleteCascade(ctx context.Context, scope Scope, blindIndex string) (*model.Secret, []model.Secret, error)
}

type secretRepo struct {
	db *gorm.DB
}

// NewSecretRepository создаёт реализацию репозитория секретов.
func NewSecretRepository(db *gorm.DB) SecretRepository {
	return &secretRepo{db: db}
}

func (r *secretRepo) Exists(ctx context.Context, id Identity) (bool, error) {
	var n int64
	err := id.apply(r.db.WithContext(ctx).Model(&model.Secret{})).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *secretRepo) FindOne(ctx context.Context, id Identity) (*model.Secret, error) {
	return findOne(id.apply(r.db.WithContext(ctx)))
}

func findOne(q *gorm.DB) (*model.Secret, error) {
	var s model.Secret
	err := q.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *secretRepo) FindPersonal(ctx context.Context, scope Scope, userID string) ([]model.Secret, error) {
	var out []model.Secret
	err := scope.apply(r.db.WithContext(ctx)).
		Where("type = ? AND owner_user_id = ?", model.SecretTypePersonal, userID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *secretRepo) FindSharedExcluding(ctx context.Context, scope Scope, exclude []string) ([]model.Secret, error) {
	q := scope.apply(r.db.WithContext(ctx)).Where("type = ?", model.SecretTypeShared)
	// пустой NOT IN превращается в NOT IN (NULL) и отсекает всё
	if len(exclude) > 0 {
		q = q.Where("secret_blind_index NOT IN ?", exclude)
	}
	var out []model.Secret
	err := q.Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *secretRepo) FindByBlindIndexes(ctx context.Context, scope Scope, blindIndexes []string, userID string) ([]model.Secret, error) {
	if len(blindIndexes) == 0 {
		return nil, nil
	}
	var out []model.Secret
	err := scope.apply(r.db.WithContext(ctx)).
		Where("secret_blind_index IN ?", blindIndexes).
		Where("(type = ? OR (type = ? AND owner_user_id = ?))",
			model.SecretTypeShared, model.SecretTypePersonal, userID).
		Find(&out).Error
	return out, err
}

func (r *secretRepo) Insert(ctx context.Context, s *model.Secret) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	// уникальный индекс idx_secret_identity: точка, где ловятся конкурентные create
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(s)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return apperr.ErrSecretAlreadyExists
	}
	return nil
}

func (r *secretRepo) UpdateValue(ctx context.Context, id Identity, value model.EncryptedField) (*model.Secret, error) {
	var out *model.Secret
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := id.apply(tx.Model(&model.Secret{})).Updates(map[string]any{
			"secret_value_ciphertext": value.Ciphertext,
			"secret_value_iv":         value.IV,
			"secret_value_tag":        value.Tag,
			"version":                 gorm.Expr("version + 1"),
			"updated_at":              time.Now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		s, err := findOne(id.apply(tx))
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *secretRepo) DeleteOne(ctx context.Context, id Identity) (*model.Secret, error) {
	var out *model.Secret
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := findOne(id.apply(tx))
		if err != nil || s == nil {
			return err
		}
		res := tx.Where("id = ?", s.ID).Delete(&model.Secret{})
		if res.Error != nil {
			return res.Error
		}
		// конкурентное удаление успело раньше
		if res.RowsAffected == 0 {
			return nil
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *secretRepo) DeleteCascade(ctx context.Context, scope Scope, blindIndex string) (*model.Secret, []model.Secret, error) {
	var (
		primary *model.Secret
		deleted []model.Secret
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var all []model.Secret
		if err := scope.apply(tx).Where("secret_blind_index = ?", blindIndex).Find(&all).Error; err != nil {
			return err
		}
		for i := range all {
			if all[i].Type == model.SecretTypeShared {
				primary = &all[i]
				break
			}
		}
		if primary == nil {
			return nil
		}
		res := tx.Where("id = ?", primary.ID).Delete(&model.Secret{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			primary = nil
			return nil
		}
		// каскад: все записи с тем же blind index, тип не учитывается
		if err := scope.apply(tx).Where("secret_blind_index = ?", blindIndex).Delete(&model.Secret{}).Error; err != nil {
			return err
		}
		deleted = all
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if primary == nil {
		return nil, nil, nil
	}
	return primary, deleted, nil
}
