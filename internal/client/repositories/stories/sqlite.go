package stories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storyshare/internal/common"
	"github.com/dmitrijs2005/storyshare/internal/client/models"
	"github.com/dmitrijs2005/storyshare/internal/dbx"
	sqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// storageErr wraps a driver failure so callers can match it with
// errors.Is(err, common.ErrStorageUnavailable) and degrade gracefully.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageUnavailable, err)
}

func isConstraintErr(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
}

func (r *SQLiteRepository) Put(ctx context.Context, s *models.StoryRecord) error {
	query := `INSERT INTO stories (id, name, description, photo_url, created_at, lat, lon, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, s.PhotoURL, s.CreatedAt.UTC().Format(time.RFC3339Nano),
		s.Lat, s.Lon, s.Synced)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("story %s: %w", s.ID, common.ErrAlreadyExists)
		}
		return storageErr("failed to insert story", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, s *models.StoryRecord) error {
	query := `INSERT INTO stories (id, name, description, photo_url, created_at, lat, lon, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				description = excluded.description,
				photo_url = excluded.photo_url,
				created_at = excluded.created_at,
				lat = excluded.lat,
				lon = excluded.lon,
				synced = excluded.synced`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, s.PhotoURL, s.CreatedAt.UTC().Format(time.RFC3339Nano),
		s.Lat, s.Lon, s.Synced)
	if err != nil {
		return storageErr("failed to upsert story", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.StoryRecord, error) {
	query := `SELECT id, name, description, photo_url, created_at, lat, lon, synced
			FROM stories WHERE id = ?`
	s, err := scanStory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("story %s: %w", id, common.ErrNotFound)
		}
		return nil, storageErr("failed to select story", err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.StoryRecord, error) {
	query := `SELECT id, name, description, photo_url, created_at, lat, lon, synced FROM stories`
	return r.selectStories(ctx, query)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	// Absent ids are a deliberate no-op so deletes stay idempotent.
	_, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return storageErr("failed to delete story", err)
	}
	return nil
}

func (r *SQLiteRepository) FindBySync(ctx context.Context, synced bool) ([]models.StoryRecord, error) {
	query := `SELECT id, name, description, photo_url, created_at, lat, lon, synced
			FROM stories WHERE synced = ?`
	return r.selectStories(ctx, query, synced)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stories`)
	if err != nil {
		return storageErr("failed to clear stories", err)
	}
	return nil
}

func (r *SQLiteRepository) selectStories(ctx context.Context, query string, args ...any) ([]models.StoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to select stories", err)
	}
	defer rows.Close()

	var result []models.StoryRecord
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, storageErr("failed to scan story", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate stories", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*models.StoryRecord, error) {
	var (
		s         models.StoryRecord
		createdAt string
		lat, lon  sql.NullFloat64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.PhotoURL, &createdAt, &lat, &lon, &s.Synced); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	s.CreatedAt = ts
	if lat.Valid && lon.Valid {
		s.Lat, s.Lon = &lat.Float64, &lon.Float64
	}
	return &s, nil
}
