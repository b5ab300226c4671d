package ports

import (
	"context"

	"github.com/google/uuid"

	"tolninja/models"
)

// StackupRepository persists stackup definitions and their last computed
// summaries. The engine itself holds no persistent state; everything a
// repository stores is plain data.
type StackupRepository interface {
	Save(ctx context.Context, record *models.StackupRecord) error
	Get(ctx context.Context, id uuid.UUID) (*models.StackupRecord, error)
	List(ctx context.Context) ([]*models.StackupRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
