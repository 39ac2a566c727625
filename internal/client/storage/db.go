// Package storage opens the client's local SQLite database, applies the
// embedded goose migrations, and wires up the repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/storyshare/internal/client/migrations"
	"github.com/dmitrijs2005/storyshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storyshare/internal/client/repositories/stories"
	"github.com/pressly/goose/v3"
)

type Repositories struct {
	Stories  stories.Repository
	Metadata metadata.Repository
	DB       *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Stories:  stories.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
		DB:       db,
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
