package store

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"time"

	"gatepass/internal/ledger/models"
)

// Store is the append-only transaction log. Append never mutates or removes
// existing entries; Clear exists solely for the super-admin data-reset
// operation and truncates the whole log.
type Store interface {
	Append(ctx context.Context, e models.Entry) error
	List(ctx context.Context, f models.Filter) ([]models.Entry, error)
	// CountPlateActivity reports entries for a plate since the given time;
	// the vehicle service uses it to downgrade deletes of recently active
	// vehicles.
	CountPlateActivity(ctx context.Context, plate string, since time.Time) (int, error)
	Summarize(ctx context.Context, f models.Filter) (models.Summary, error)
	Clear(ctx context.Context) error
}
