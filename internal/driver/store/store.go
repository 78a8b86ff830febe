package store

import (
	"context"

	"gatepass/internal/driver/models"
)

// Store is the driver repository contract.
type Store interface {
	Create(ctx context.Context, d *models.Driver) error
	Update(ctx context.Context, d *models.Driver) error
	FindByID(ctx context.Context, id string) (*models.Driver, error)
	FindByName(ctx context.Context, name string) (*models.Driver, error)
	List(ctx context.Context) ([]models.Driver, error)
	Delete(ctx context.Context, id string) error
}
