package repo

import (
	"SecretKeeper/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// InitDB открывает БД по DSN и выполняет миграции.
// postgres:// и key=value DSN открываются как PostgreSQL, всё остальное как файл SQLite (modernc).
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialectorFor(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
}

// Migrate создаёт таблицы и индексы для всех моделей сервера.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.BlindIndexSalt{},
		&model.Secret{},
		&model.SecretVersion{},
		&model.AuditAction{},
		&model.AuditLog{},
		&model.SecretSnapshot{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
