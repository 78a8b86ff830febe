package store

import (
	"context"

	"gatepass/internal/gate/models"
)

// Store is the gate repository contract. Exists satisfies the gate-access
// validator's policy.GateLookup port.
type Store interface {
	Create(ctx context.Context, g *models.Gate) error
	Update(ctx context.Context, g *models.Gate) error
	FindByID(ctx context.Context, id string) (*models.Gate, error)
	List(ctx context.Context) ([]models.Gate, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
