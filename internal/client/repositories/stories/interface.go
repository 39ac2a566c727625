package stories

import (
	"context"

	"github.com/dmitrijs2005/storyshare/internal/client/models"
)

// Repository is the local story store. All operations are context-aware and
// atomic per record; failures unrelated to absence wrap
// common.ErrStorageUnavailable.
type Repository interface {
	// Put inserts a new record and fails with common.ErrAlreadyExists when
	// the id is already present. Used by the offline-submission path.
	Put(ctx context.Context, r *models.StoryRecord) error

	// Upsert inserts or overwrites by id. Used by sync confirmations.
	Upsert(ctx context.Context, r *models.StoryRecord) error

	// Get returns the record or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.StoryRecord, error)

	// GetAll returns every record in unspecified order.
	GetAll(ctx context.Context) ([]models.StoryRecord, error)

	// Delete removes the record if present; absent ids are a no-op.
	Delete(ctx context.Context, id string) error

	// FindBySync returns the records whose synced flag matches.
	FindBySync(ctx context.Context, synced bool) ([]models.StoryRecord, error)

	// Clear removes all records.
	Clear(ctx context.Context) error
}
