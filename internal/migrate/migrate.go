// Package migrate applies the embedded goose migrations on startup.
package migrate

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/rezervalabs/rezerva/libs/db"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Up brings the schema to the latest version. Goose drives a database/sql
// handle borrowed from the pgx pool; the pool itself stays open.
func Up(ctx context.Context, pool *db.Pool) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	sqlDB := pool.SQLDB()
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
