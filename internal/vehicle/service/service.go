package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gatepass/internal/audit"
	"gatepass/internal/policy"
	"gatepass/internal/vehicle/models"
	"gatepass/internal/vehicle/store"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// DefaultActivityWindow is how far back a delete looks for ledger activity
// before it will remove a vehicle outright.
const DefaultActivityWindow = 30 * 24 * time.Hour

// ActivityCounter reports recent ledger activity for a plate. The vehicle
// service uses it to decide whether a delete must be downgraded.
type ActivityCounter interface {
	CountPlateActivity(ctx context.Context, plate string, since time.Time) (int, error)
}

// Service orchestrates vehicle CRUD: permission enforcement, plate
// uniqueness, ID generation, the delete-downgrade rule, and audit capture.
type Service struct {
	vehicles       store.Store
	activity       ActivityCounter
	auditTrail     *audit.Service
	logger         *slog.Logger
	activityWindow time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithActivityWindow overrides the recent-activity window used by Delete.
func WithActivityWindow(d time.Duration) Option {
	return func(s *Service) { s.activityWindow = d }
}

func New(vehicles store.Store, activity ActivityCounter, auditTrail *audit.Service, opts ...Option) *Service {
	s := &Service{
		vehicles:       vehicles,
		activity:       activity,
		auditTrail:     auditTrail,
		activityWindow: DefaultActivityWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func actor(ctx context.Context) (string, policy.Role) {
	return requestcontext.Username(ctx), policy.Role(requestcontext.Role(ctx))
}

// Create registers a new vehicle, generating the next zero-padded numeric ID.
func (s *Service) Create(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	username, role := actor(ctx)
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if existing, err := s.vehicles.FindByPlate(ctx, v.PlateNumber); err == nil && existing != nil {
		return nil, dErrors.Newf(dErrors.CodeDuplicatePlate,
			"plate %q already registered", strings.TrimSpace(v.PlateNumber))
	}

	maxID, err := s.vehicles.MaxNumericID(ctx)
	if err != nil {
		return nil, storeErr(err, "vehicle")
	}
	v.ID = models.FormatID(maxID + 1)
	if v.Status == "" {
		v.Status = domain.TxActionOut
	}
	if strings.TrimSpace(v.AccessStatus) == "" {
		v.AccessStatus = "Access"
	}

	// Captured before the commit so the trail reflects intent even if the
	// write races; creates have no old state.
	s.auditTrail.Record(ctx, username, role, audit.ActionCreate, nil, v.Snapshot())

	if err := s.vehicles.Create(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeDuplicatePlate,
				"plate %q already registered", strings.TrimSpace(v.PlateNumber))
		}
		return nil, storeErr(err, "vehicle")
	}

	s.logger.InfoContext(ctx, "vehicle created",
		"vehicle_id", v.ID, "plate", v.PlateNumber, "by", username)
	return v, nil
}

// Update replaces the mutable fields of a vehicle. The ID is immutable and
// Status is owned by the transaction processor; both are carried over from
// the stored record regardless of what the caller sent.
func (s *Service) Update(ctx context.Context, id string, v *models.Vehicle) (*models.Vehicle, error) {
	username, role := actor(ctx)
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	current, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "vehicle")
	}

	if other, err := s.vehicles.FindByPlate(ctx, v.PlateNumber); err == nil && other.ID != id {
		return nil, dErrors.Newf(dErrors.CodeDuplicatePlate,
			"plate %q already registered to vehicle %s", strings.TrimSpace(v.PlateNumber), other.ID)
	}

	v.ID = current.ID
	v.Status = current.Status
	v.Version = current.Version
	v.CreatedAt = current.CreatedAt

	s.auditTrail.Record(ctx, username, role, audit.ActionUpdate, current.Snapshot(), v.Snapshot())

	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, s.translateUpdateErr(ctx, err, id, v.PlateNumber)
	}

	s.logger.InfoContext(ctx, "vehicle updated",
		"vehicle_id", v.ID, "plate", v.PlateNumber, "by", username)
	return v, nil
}

// translateUpdateErr decides whether a store conflict was a plate collision
// (the unique-index backstop fired) or a lost version race.
func (s *Service) translateUpdateErr(ctx context.Context, err error, id, plate string) error {
	if !errors.Is(err, sentinel.ErrConflict) {
		return storeErr(err, "vehicle")
	}
	if other, findErr := s.vehicles.FindByPlate(ctx, plate); findErr == nil && other.ID != id {
		return dErrors.Newf(dErrors.CodeDuplicatePlate,
			"plate %q already registered to vehicle %s", strings.TrimSpace(plate), other.ID)
	}
	return dErrors.New(dErrors.CodeConflict, "vehicle was modified concurrently, retry")
}

// UpdateDriver reassigns the current driver. It is the only vehicle write the
// security role may perform; the store enforces the same restriction on
// full-row writes as defense in depth.
func (s *Service) UpdateDriver(ctx context.Context, id, driver string) error {
	username, role := actor(ctx)
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionUpdateDriver); err != nil {
		return err
	}
	if err := s.vehicles.UpdateCurrentDriver(ctx, id, strings.TrimSpace(driver)); err != nil {
		return storeErr(err, "vehicle")
	}
	s.logger.InfoContext(ctx, "vehicle driver updated",
		"vehicle_id", id, "driver", driver, "by", username)
	return nil
}

// Delete removes a vehicle, unless the ledger shows recent activity for its
// plate: then the delete is downgraded to "No Access" so ledger-referenced
// identities are never erased outright. Returns true if downgraded.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	username, role := actor(ctx)
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionDelete); err != nil {
		return false, err
	}

	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return false, storeErr(err, "vehicle")
	}

	since := time.Now().Add(-s.activityWindow)
	count, err := s.activity.CountPlateActivity(ctx, v.PlateNumber, since)
	if err != nil {
		return false, storeErr(err, "ledger")
	}

	if count > 0 {
		updated := v.Clone()
		updated.AccessStatus = "No Access"
		s.auditTrail.Record(ctx, username, role, audit.ActionUpdate, v.Snapshot(), updated.Snapshot())
		if err := s.vehicles.Update(ctx, updated); err != nil {
			return false, s.translateUpdateErr(ctx, err, id, updated.PlateNumber)
		}
		s.logger.InfoContext(ctx, "vehicle delete downgraded to no access",
			"vehicle_id", id, "recent_entries", count, "by", username)
		return true, nil
	}

	if err := s.vehicles.Delete(ctx, id); err != nil {
		return false, storeErr(err, "vehicle")
	}
	s.logger.InfoContext(ctx, "vehicle deleted", "vehicle_id", id, "by", username)
	return false, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	_, role := actor(ctx)
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionRead); err != nil {
		return nil, err
	}
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "vehicle")
	}
	return v, nil
}

func (s *Service) GetByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	_, role := actor(ctx)
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionRead); err != nil {
		return nil, err
	}
	v, err := s.vehicles.FindByPlate(ctx, plate)
	if err != nil {
		return nil, storeErr(err, "vehicle")
	}
	return v, nil
}

func (s *Service) List(ctx context.Context) ([]models.Vehicle, error) {
	_, role := actor(ctx)
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionRead); err != nil {
		return nil, err
	}
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, storeErr(err, "vehicle")
	}
	return vehicles, nil
}

// storeErr translates sentinel store errors into domain errors.
func storeErr(err error, entity string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodePermissionDenied,
			"role may not perform full-row writes on "+entity)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, entity+" was modified concurrently, retry")
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, entity+" store unavailable")
	}
}
