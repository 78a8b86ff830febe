package store

import (
	"context"

	"gatepass/internal/user/models"
)

// Store is the account repository contract. Username uniqueness is enforced
// case-insensitively; a collision returns sentinel.ErrConflict.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}
