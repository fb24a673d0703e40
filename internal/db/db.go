package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tasknest/internal/models"
)

// Open connects to postgres, retrying while the server comes up, and
// migrates the users and todos tables.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("DATABASE_DSN required")
	}

	var conn *gorm.DB
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
		if err != nil {
			logger.WarnContext(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		conn = db
		return nil
	})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}

	if err := conn.WithContext(ctx).AutoMigrate(&models.User{}, &models.Todo{}); err != nil {
		return nil, oops.Code("MIGRATION_FAILED").With("operation", "auto migrate").Wrap(err)
	}
	return conn, nil
}
