package keys

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Имена переменных в файле ключей.
const (
	EnvEncryptionKey     = "ENCRYPTION_KEY"
	EnvRootEncryptionKey = "ROOT_ENCRYPTION_KEY"
)

// LoadFile читает ключи из dotenv-файла.
func LoadFile(path string) (legacy, root string, err error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		return "", "", fmt.Errorf("read keys file: %w", err)
	}
	return vals[EnvEncryptionKey], vals[EnvRootEncryptionKey], nil
}

// ReloadFromFile перечитывает файл и применяет ключи к провайдеру.
func (p *Provider) ReloadFromFile(path string) error {
	legacy, root, err := LoadFile(path)
	if err != nil {
		return err
	}
	return p.Reload(legacy, root)
}

// Watch следит за файлом ключей и перезагружает провайдер при изменении.
// Следим за каталогом: редакторы и k8s заменяют файл через rename.
// Блокируется до отмены ctx.
func Watch(ctx context.Context, path string, p *Provider, logger *zap.SugaredLogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create keys watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch keys dir: %w", err)
	}
	logger.Infow("Watching keys file", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := p.ReloadFromFile(abs); err != nil {
				// остаёмся на прежних ключах
				logger.Warnw("Keys reload failed", "path", abs, "error", err)
				continue
			}
			logger.Infow("Keys reloaded", "path", abs, "root", p.HasRoot(), "legacy", p.HasLegacy())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Keys watcher error", "error", err)
		}
	}
}
