package store

import (
	"context"

	"gatepass/internal/vehicle/models"
	"gatepass/pkg/domain"
)

// Store is the vehicle repository contract. Implementations enforce plate
// uniqueness (sentinel.ErrConflict on collision) and reject full-row writes
// from the security role (sentinel.ErrInvalidState) so the restriction holds
// even if a service-layer check is bypassed.
type Store interface {
	Create(ctx context.Context, v *models.Vehicle) error
	// Update replaces the record, guarding on Version; a stale write returns
	// sentinel.ErrConflict so the caller re-reads fresh state.
	Update(ctx context.Context, v *models.Vehicle) error
	// UpdateCurrentDriver mutates only the current driver; this is the one
	// vehicle write the security role is allowed to perform.
	UpdateCurrentDriver(ctx context.Context, id, driver string) error
	// ApplyTransaction commits the outcome of a gate transaction: status,
	// current driver, and the one-time pass flag, guarded on Version. It is
	// not subject to the security-role write restriction.
	ApplyTransaction(ctx context.Context, tx TransactionUpdate) error
	FindByID(ctx context.Context, id string) (*models.Vehicle, error)
	// FindByPlate matches case-insensitively on the trimmed plate.
	FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	List(ctx context.Context) ([]models.Vehicle, error)
	Delete(ctx context.Context, id string) error
	// MaxNumericID scans existing IDs for generation, treating non-numeric
	// values as 0.
	MaxNumericID(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status domain.TxAction) (int, error)
}

// TransactionUpdate carries the vehicle-side effects of a committed gate
// transaction. Version is the version the caller read before deciding;
// a mismatch means the vehicle changed underneath and returns
// sentinel.ErrConflict.
type TransactionUpdate struct {
	VehicleID     string
	Status        domain.TxAction
	CurrentDriver string
	ClearPass     bool
	Version       int64
}
