package calculations

import (
	"context"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/models"
)

// Repository persists calculations. Every read and write is scoped by the
// owning user's id; rows belonging to other users behave as absent.
type Repository interface {
	Create(ctx context.Context, calculation *models.Calculation) (*models.Calculation, error)
	GetByID(ctx context.Context, userID, id string) (*models.Calculation, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Calculation, error)
	Update(ctx context.Context, calculation *models.Calculation) (*models.Calculation, error)
	Delete(ctx context.Context, userID, id string) error
}
