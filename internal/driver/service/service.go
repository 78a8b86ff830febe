package service

import (
	"context"
	"errors"
	"log/slog"

	"gatepass/internal/driver/models"
	"gatepass/internal/driver/store"
	"gatepass/internal/policy"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"

	"github.com/google/uuid"
)

// Service manages the driver roster. Driver records share the vehicles
// resource for permission purposes: whoever can edit vehicles can maintain
// the roster they are assigned from.
type Service struct {
	drivers store.Store
	logger  *slog.Logger
}

func New(drivers store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{drivers: drivers, logger: logger}
}

func (s *Service) Create(ctx context.Context, d *models.Driver) (*models.Driver, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.ID = uuid.NewString()
	if d.Status == "" {
		d.Status = models.DriverActive
	}
	if err := s.drivers.Create(ctx, d); err != nil {
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "driver created", "driver_id", d.ID, "name", d.Name)
	return d, nil
}

func (s *Service) Update(ctx context.Context, id string, d *models.Driver) (*models.Driver, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.ID = id
	if err := s.drivers.Update(ctx, d); err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionUpdate); err != nil {
		return err
	}
	if err := s.drivers.Delete(ctx, id); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Driver, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionRead); err != nil {
		return nil, err
	}
	d, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

// GetByName looks a driver up by display name, case-insensitively. Gate
// operators know drivers by name, not ID, so this backs the roster search.
func (s *Service) GetByName(ctx context.Context, name string) (*models.Driver, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionRead); err != nil {
		return nil, err
	}
	d, err := s.drivers.FindByName(ctx, name)
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context) ([]models.Driver, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionRead); err != nil {
		return nil, err
	}
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return drivers, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "driver not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "driver already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "driver store unavailable")
	}
}
