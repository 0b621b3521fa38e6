package service

import (
	"SecretKeeper/internal/apperr"
	"SecretKeeper/internal/crypto"
	"SecretKeeper/internal/events"
	"SecretKeeper/internal/model"
	"SecretKeeper/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Имена операций для метрик.
const (
	OpCreate    = "create"
	OpReadMany  = "read_many"
	OpReadOne   = "read_one"
	OpReadBatch = "read_batch"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpBootstrap = "bootstrap"
)

// BlindIndexer считает blind index имён в workspace.
type BlindIndexer interface {
	Compute(ctx context.Context, name, workspaceID string) (string, error)
	ComputeMany(ctx context.Context, workspaceID string, names []string) (map[string]string, error)
}

// SaltCreator создаёт соль workspace.
type SaltCreator interface {
	Create(ctx context.Context, workspaceID string) error
}

// Publisher принимает побочные эффекты после фиксации основной записи.
type Publisher interface {
	Publish(evs ...events.Event)
}

// OperationObserver учитывает длительность и результат операций.
type OperationObserver interface {
	ObserveOperation(op string, err error, d time.Duration)
}

// SecretService выполняет операции над секретами.
type SecretService struct {
	secrets   repo.SecretRepository
	indexer   BlindIndexer
	salts     SaltCreator
	publisher Publisher
	observer  OperationObserver
	logger    *zap.SugaredLogger
}

// NewSecretService собирает сервис. observer может быть nil.
func NewSecretService(
	secrets repo.SecretRepository,
	indexer BlindIndexer,
	salts SaltCreator,
	publisher Publisher,
	observer OperationObserver,
	logger *zap.SugaredLogger,
) *SecretService {
	return &SecretService{
		secrets:   secrets,
		indexer:   indexer,
		salts:     salts,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
	}
}

// Result: итог операции. Events уже отправлены в Publisher к моменту возврата.
type Result struct {
	Secret  *model.Secret
	Secrets []model.Secret
	Events  []events.Event
}

// CreateInput: параметры создания секрета.
type CreateInput struct {
	SecretName  string
	WorkspaceID string
	Environment string
	Type        model.SecretType
	Actor       model.Actor
	Payload     model.Payload
	FolderID    *string
}

// ReadOneInput: параметры чтения одного секрета. Type может быть пустым.
type ReadOneInput struct {
	SecretName  string
	WorkspaceID string
	Environment string
	Type        model.SecretType
	Actor       model.Actor
}

// UpdateInput: параметры обновления значения секрета.
type UpdateInput struct {
	SecretName  string
	WorkspaceID string
	Environment string
	Type        model.SecretType
	Actor       model.Actor
	SecretValue model.EncryptedField
}

// DeleteInput: параметры удаления секрета.
type DeleteInput struct {
	SecretName  string
	WorkspaceID string
	Environment string
	Type        model.SecretType
	Actor       model.Actor
}

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", apperr.ErrBadRequest, msg)
}

func validateScope(workspaceID, environment string) error {
	if workspaceID == "" {
		return badRequest("workspaceId is required")
	}
	if environment == "" {
		return badRequest("environment is required")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return badRequest("secret name is required")
	}
	return nil
}

func validateType(t model.SecretType) error {
	if !t.Valid() {
		return badRequest(fmt.Sprintf("invalid secret type %q", t))
	}
	return nil
}

// finish публикует события успешной операции и снимает метрики.
func (s *SecretService) finish(op string, start time.Time, res Result, err error) (Result, error) {
	if s.observer != nil {
		s.observer.ObserveOperation(op, err, time.Since(start))
	}
	if err != nil {
		if apperr.HTTPStatus(err) >= 500 && !errors.Is(err, context.Canceled) {
			s.logger.Errorw("Secret operation failed", "op", op, "error", err)
		}
		return Result{}, err
	}
	if len(res.Events) > 0 {
		s.publisher.Publish(res.Events...)
	}
	return res, nil
}

// sideEffects: аудит, снимок и телеметрия мутации.
func sideEffects(action, telemetry string, ws, env string, folderID *string, ids []string, actor model.Actor) []events.Event {
	return []events.Event{
		events.AuditLogged(ws, action, ids, actor),
		events.SnapshotRequested(ws, env, folderID),
		events.TelemetryCaptured(telemetry, len(ids), ws, env, actor),
	}
}

func secretIDs(list []model.Secret) []string {
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	return ids
}

// Create создаёт общий секрет или персональное переопределение существующего общего.
func (s *SecretService) Create(ctx context.Context, in CreateInput) (Result, error) {
	start := time.Now()
	res, err := s.create(ctx, in)
	return s.finish(OpCreate, start, res, err)
}

func (s *SecretService) create(ctx context.Context, in CreateInput) (Result, error) {
	if err := validateName(in.SecretName); err != nil {
		return Result{}, err
	}
	if err := validateScope(in.WorkspaceID, in.Environment); err != nil {
		return Result{}, err
	}
	if err := validateType(in.Type); err != nil {
		return Result{}, err
	}

	blind, err := s.indexer.Compute(ctx, in.SecretName, in.WorkspaceID)
	if err != nil {
		return Result{}, err
	}

	own := model.OwnershipFor(in.Type, in.Actor)
	id := repo.Identity{WorkspaceID: in.WorkspaceID, Environment: in.Environment, BlindIndex: blind, Ownership: own}
	exists, err := s.secrets.Exists(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if exists {
		return Result{}, apperr.ErrSecretAlreadyExists
	}

	// персональная запись: только поверх существующей общей
	if _, ok := own.(model.Personal); ok {
		sharedID := id
		sharedID.Ownership = model.Shared{}
		hasShared, err := s.secrets.Exists(ctx, sharedID)
		if err != nil {
			return Result{}, err
		}
		if !hasShared {
			return Result{}, apperr.ErrNoSharedSecret
		}
	}

	secret := &model.Secret{
		WorkspaceID:   in.WorkspaceID,
		Environment:   in.Environment,
		Type:          own.Type(),
		OwnerUserID:   own.Owner(),
		BlindIndex:    blind,
		Version:       1,
		SecretKey:     in.Payload.SecretKey,
		SecretValue:   in.Payload.SecretValue,
		SecretComment: in.Payload.SecretComment,
		Algorithm:     crypto.AlgorithmAES256GCM,
		KeyEncoding:   model.KeyEncodingLegacyUTF8,
		FolderID:      in.FolderID,
	}
	// гонку между Exists и Insert ловит уникальный индекс
	if err := s.secrets.Insert(ctx, secret); err != nil {
		return Result{}, err
	}

	evs := []events.Event{events.VersionsAdded(in.WorkspaceID, []model.SecretVersion{model.NewSecretVersion(secret)})}
	evs = append(evs, sideEffects(model.ActionAddSecrets, events.TelemetrySecretsAdded,
		in.WorkspaceID, in.Environment, in.FolderID, []string{secret.ID}, in.Actor)...)
	return Result{Secret: secret, Events: evs}, nil
}

// ReadMany возвращает все секреты окружения, видимые актору. Сначала его персональные,
// затем общие, не перекрытые персональными.
func (s *SecretService) ReadMany(ctx context.Context, workspaceID, environment string, actor model.Actor) (Result, error) {
	start := time.Now()
	res, err := s.readMany(ctx, workspaceID, environment, actor)
	return s.finish(OpReadMany, start, res, err)
}

func (s *SecretService) readMany(ctx context.Context, workspaceID, environment string, actor model.Actor) (Result, error) {
	if err := validateScope(workspaceID, environment); err != nil {
		return Result{}, err
	}
	scope := repo.Scope{WorkspaceID: workspaceID, Environment: environment}

	personal, err := s.secrets.FindPersonal(ctx, scope, actor.UserID)
	if err != nil {
		return Result{}, err
	}
	covered := make([]string, 0, len(personal))
	for _, p := range personal {
		covered = append(covered, p.BlindIndex)
	}
	shared, err := s.secrets.FindSharedExcluding(ctx, scope, covered)
	if err != nil {
		return Result{}, err
	}

	all := make([]model.Secret, 0, len(personal)+len(shared))
	all = append(all, personal...)
	all = append(all, shared...)
	return Result{Secrets: all, Events: readEvents(events.TelemetrySecretsPulled, workspaceID, environment, secretIDs(all), actor)}, nil
}

func readEvents(telemetry, ws, env string, ids []string, actor model.Actor) []events.Event {
	return []events.Event{
		events.AuditLogged(ws, model.ActionReadSecrets, ids, actor),
		events.TelemetryCaptured(telemetry, len(ids), ws, env, actor),
	}
}

// lookupOrder: порядок поиска для чтения одного секрета.
// Без типа и для personal: персональный актора, затем общий. Для shared: только общий.
func lookupOrder(t model.SecretType, actor model.Actor) []model.Ownership {
	if t == model.SecretTypeShared {
		return []model.Ownership{model.Shared{}}
	}
	return []model.Ownership{model.Personal{UserID: actor.UserID}, model.Shared{}}
}

// ReadOne возвращает секрет по имени. Персональный перекрывает общий.
func (s *SecretService) ReadOne(ctx context.Context, in ReadOneInput) (Result, error) {
	start := time.Now()
	res, err := s.readOne(ctx, in)
	return s.finish(OpReadOne, start, res, err)
}

func (s *SecretService) readOne(ctx context.Context, in ReadOneInput) (Result, error) {
	if err := validateName(in.SecretName); err != nil {
		return Result{}, err
	}
	if err := validateScope(in.WorkspaceID, in.Environment); err != nil {
		return Result{}, err
	}
	if in.Type != "" {
		if err := validateType(in.Type); err != nil {
			return Result{}, err
		}
	}

	blind, err := s.indexer.Compute(ctx, in.SecretName, in.WorkspaceID)
	if err != nil {
		return Result{}, err
	}

	for _, own := range lookupOrder(in.Type, in.Actor) {
		found, err := s.secrets.FindOne(ctx, repo.Identity{
			WorkspaceID: in.WorkspaceID,
			Environment: in.Environment,
			BlindIndex:  blind,
			Ownership:   own,
		})
		if err != nil {
			return Result{}, err
		}
		if found != nil {
			return Result{
				Secret: found,
				Events: readEvents(events.TelemetrySecretsPull, in.WorkspaceID, in.Environment, []string{found.ID}, in.Actor),
			}, nil
		}
	}
	return Result{}, apperr.ErrSecretNotFound
}

// ReadBatch читает несколько секретов по именам с одной расшифровкой соли.
// Отсутствующие имена пропускаются. Порядок результата: порядок первых вхождений имён.
func (s *SecretService) ReadBatch(ctx context.Context, names []string, workspaceID, environment string, actor model.Actor) (Result, error) {
	start := time.Now()
	res, err := s.readBatch(ctx, names, workspaceID, environment, actor)
	return s.finish(OpReadBatch, start, res, err)
}

func (s *SecretService) readBatch(ctx context.Context, names []string, workspaceID, environment string, actor model.Actor) (Result, error) {
	if err := validateScope(workspaceID, environment); err != nil {
		return Result{}, err
	}
	for _, n := range names {
		if err := validateName(n); err != nil {
			return Result{}, err
		}
	}

	byName, err := s.indexer.ComputeMany(ctx, workspaceID, names)
	if err != nil {
		return Result{}, err
	}
	blinds := make([]string, 0, len(byName))
	for _, b := range byName {
		blinds = append(blinds, b)
	}

	rows, err := s.secrets.FindByBlindIndexes(ctx, repo.Scope{WorkspaceID: workspaceID, Environment: environment}, blinds, actor.UserID)
	if err != nil {
		return Result{}, err
	}
	personal := make(map[string]model.Secret)
	shared := make(map[string]model.Secret)
	for _, r := range rows {
		if r.Type == model.SecretTypePersonal {
			personal[r.BlindIndex] = r
		} else {
			shared[r.BlindIndex] = r
		}
	}

	out := make([]model.Secret, 0, len(byName))
	seen := make(map[string]struct{}, len(byName))
	for _, n := range names {
		b := byName[n]
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		if p, ok := personal[b]; ok {
			out = append(out, p)
		} else if sh, ok := shared[b]; ok {
			out = append(out, sh)
		}
	}
	return Result{Secrets: out, Events: readEvents(events.TelemetrySecretsPulled, workspaceID, environment, secretIDs(out), actor)}, nil
}

// Update меняет значение секрета и атомарно увеличивает версию.
func (s *SecretService) Update(ctx context.Context, in UpdateInput) (Result, error) {
	start := time.Now()
	res, err := s.update(ctx, in)
	return s.finish(OpUpdate, start, res, err)
}

func (s *SecretService) update(ctx context.Context, in UpdateInput) (Result, error) {
	if err := validateName(in.SecretName); err != nil {
		return Result{}, err
	}
	if err := validateScope(in.WorkspaceID, in.Environment); err != nil {
		return Result{}, err
	}
	if err := validateType(in.Type); err != nil {
		return Result{}, err
	}

	blind, err := s.indexer.Compute(ctx, in.SecretName, in.WorkspaceID)
	if err != nil {
		return Result{}, err
	}
	updated, err := s.secrets.UpdateValue(ctx, repo.Identity{
		WorkspaceID: in.WorkspaceID,
		Environment: in.Environment,
		BlindIndex:  blind,
		Ownership:   model.OwnershipFor(in.Type, in.Actor),
	}, in.SecretValue)
	if err != nil {
		return Result{}, err
	}
	if updated == nil {
		return Result{}, apperr.ErrSecretNotFound
	}

	// версия несёт прежний шифртекст ключа и новое значение
	evs := []events.Event{events.VersionsAdded(in.WorkspaceID, []model.SecretVersion{model.NewSecretVersion(updated)})}
	evs = append(evs, sideEffects(model.ActionUpdateSecrets, events.TelemetrySecretsModified,
		in.WorkspaceID, in.Environment, updated.FolderID, []string{updated.ID}, in.Actor)...)
	return Result{Secret: updated, Events: evs}, nil
}

// Delete удаляет секрет. Удаление общего секрета удаляет и все записи с тем же
// blind index в окружении, включая персональные переопределения.
// Result.Secret содержит основную удалённую запись, Result.Secrets все удалённые.
func (s *SecretService) Delete(ctx context.Context, in DeleteInput) (Result, error) {
	start := time.Now()
	res, err := s.delete(ctx, in)
	return s.finish(OpDelete, start, res, err)
}

func (s *SecretService) delete(ctx context.Context, in DeleteInput) (Result, error) {
	if err := validateName(in.SecretName); err != nil {
		return Result{}, err
	}
	if err := validateScope(in.WorkspaceID, in.Environment); err != nil {
		return Result{}, err
	}
	if err := validateType(in.Type); err != nil {
		return Result{}, err
	}

	blind, err := s.indexer.Compute(ctx, in.SecretName, in.WorkspaceID)
	if err != nil {
		return Result{}, err
	}

	var (
		primary *model.Secret
		deleted []model.Secret
	)
	switch own := model.OwnershipFor(in.Type, in.Actor).(type) {
	case model.Shared:
		primary, deleted, err = s.secrets.DeleteCascade(ctx, repo.Scope{WorkspaceID: in.WorkspaceID, Environment: in.Environment}, blind)
	case model.Personal:
		primary, err = s.secrets.DeleteOne(ctx, repo.Identity{
			WorkspaceID: in.WorkspaceID,
			Environment: in.Environment,
			BlindIndex:  blind,
			Ownership:   own,
		})
		if primary != nil {
			deleted = []model.Secret{*primary}
		}
	}
	if err != nil {
		return Result{}, err
	}
	if primary == nil {
		return Result{}, apperr.ErrSecretNotFound
	}

	ids := secretIDs(deleted)
	evs := []events.Event{events.VersionsDeleted(in.WorkspaceID, ids)}
	evs = append(evs, sideEffects(model.ActionDeleteSecrets, events.TelemetrySecretsDeleted,
		in.WorkspaceID, in.Environment, primary.FolderID, ids, in.Actor)...)
	return Result{Secret: primary, Secrets: deleted, Events: evs}, nil
}
