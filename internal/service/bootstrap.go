package service

import (
	"SecretKeeper/internal/apperr"
	"context"
	"errors"
	"time"
)

// BootstrapWorkspace создаёт соль blind index для workspace.
// Повторный вызов не ошибка: created=false.
func (s *SecretService) BootstrapWorkspace(ctx context.Context, workspaceID string) (created bool, err error) {
	start := time.Now()
	defer func() {
		if s.observer != nil {
			s.observer.ObserveOperation(OpBootstrap, err, time.Since(start))
		}
	}()

	if workspaceID == "" {
		return false, badRequest("workspaceId is required")
	}
	err = s.salts.Create(ctx, workspaceID)
	if errors.Is(err, apperr.ErrSaltAlreadyExists) {
		return false, nil
	}
	if err != nil {
		s.logger.Errorw("Workspace bootstrap failed", "workspace", workspaceID, "error", err)
		return false, err
	}
	s.logger.Infow("Workspace bootstrapped", "workspace", workspaceID)
	return true, nil
}
