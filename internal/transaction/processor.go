package transaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	ledgermodels "gatepass/internal/ledger/models"
	ledgerstore "gatepass/internal/ledger/store"
	"gatepass/internal/policy"
	"gatepass/internal/transaction/metrics"
	vehiclemodels "gatepass/internal/vehicle/models"
	vehiclestore "gatepass/internal/vehicle/store"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

const defaultStoreTimeout = 5 * time.Second

var tracer = otel.Tracer("gatepass/transaction")

// EventPublisher streams committed ledger entries to interested consumers.
// Publishing is best effort: a failure is logged, never surfaced to the gate.
type EventPublisher interface {
	Publish(ctx context.Context, e ledgermodels.Entry) error
}

// Processor validates and commits gate transactions. Per-vehicle locking
// plus the store's version guard make concurrent scans for the same vehicle
// serialize: the first commits, the rest observe its result.
type Processor struct {
	vehicles     vehiclestore.Store
	ledger       ledgerstore.Store
	validator    *policy.GateAccessValidator
	publisher    EventPublisher
	logger       *slog.Logger
	locks        *vehicleLocks
	storeTimeout time.Duration
}

type Option func(*Processor)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithPublisher attaches a stream for committed entries.
func WithPublisher(pub EventPublisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithStoreTimeout overrides the deadline applied to a transaction's
// repository calls.
func WithStoreTimeout(d time.Duration) Option {
	return func(p *Processor) { p.storeTimeout = d }
}

func NewProcessor(vehicles vehiclestore.Store, ledger ledgerstore.Store, validator *policy.GateAccessValidator, opts ...Option) *Processor {
	p := &Processor{
		vehicles:     vehicles,
		ledger:       ledger,
		validator:    validator,
		locks:        newVehicleLocks(),
		storeTimeout: defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Process runs one gate transaction end to end: resolve the vehicle, check
// gate access, and atomically flip the vehicle status while appending the
// ledger entry. A denial comes back as a gate-access error carrying the
// denial reason in its metadata.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "transaction.Process",
		trace.WithAttributes(attribute.String("gate.id", req.GateID)))
	defer span.End()

	result, err := p.process(ctx, req)
	outcome := metrics.OutcomeGranted
	if err != nil {
		outcome = metrics.OutcomeError
		if dErrors.HasCode(err, dErrors.CodeGateAccessDenied) {
			outcome = metrics.OutcomeDenied
			metrics.ObserveDenial(dErrors.MetaValue(err, "reason"))
		}
		span.RecordError(err)
	}
	metrics.ObserveTransaction(req.Action, outcome, time.Since(started))
	return result, err
}

func (p *Processor) process(ctx context.Context, req Request) (*Result, error) {
	// One deadline covers every store call from resolve through commit: a
	// hung backend fails the transaction instead of holding the vehicle lock
	// for as long as the client waits.
	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	username := requestcontext.Username(ctx)
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionTransactions); err != nil {
		return nil, err
	}

	action, err := parseAction(req.Action)
	if err != nil {
		return nil, err
	}

	resolved, err := p.resolveVehicle(ctx, req.PlateOrID)
	if err != nil {
		return nil, err
	}

	p.locks.acquire(resolved.ID)
	defer p.locks.release(resolved.ID)

	// Re-read under the lock: a queued scan must see the state the previous
	// one committed, not the state it was resolved against.
	vehicle, err := p.vehicles.FindByID(ctx, resolved.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no vehicle matches %q", req.PlateOrID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "vehicle lookup failed")
	}

	driver := resolveDriver(req.Driver, vehicle, username)

	decision, err := p.validator.Validate(ctx, policy.VehicleGateProfile{
		AccessStatus: vehicle.AccessStatus,
		AllowedGates: vehicle.AllowedGates,
		OneTimePass:  vehicle.OneTimePass,
	}, req.GateID, action)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		p.logger.InfoContext(ctx, "gate access denied",
			"vehicle_id", vehicle.ID, "plate", vehicle.PlateNumber,
			"gate", req.GateID, "action", action.String(), "reason", decision.Reason)
		return nil, dErrors.New(dErrors.CodeGateAccessDenied, "gate access denied").
			WithMeta("reason", decision.Reason)
	}

	entry := ledgermodels.Entry{
		ID:           uuid.NewString(),
		Timestamp:    requestcontext.Now(ctx),
		PlateNumber:  vehicle.PlateNumber,
		Driver:       driver,
		Action:       action,
		Gate:         req.GateID,
		Remarks:      req.Remarks,
		LoggedBy:     username,
		AccessStatus: vehicle.AccessStatus,
	}

	if err := p.commit(ctx, vehicle, entry, decision.ConsumedPass); err != nil {
		return nil, err
	}

	vehicle.Status = action
	if driver != "Unknown" {
		vehicle.CurrentDriver = driver
	}
	if decision.ConsumedPass {
		vehicle.OneTimePass = false
	}
	vehicle.Version++

	p.logger.InfoContext(ctx, "transaction committed",
		"vehicle_id", vehicle.ID, "plate", vehicle.PlateNumber,
		"gate", req.GateID, "action", action.String(), "driver", driver,
		"pass_consumed", decision.ConsumedPass)

	p.publish(ctx, entry)
	return &Result{Entry: entry, Vehicle: vehicle}, nil
}

// commit applies the vehicle update and appends the ledger entry. If the
// append fails after the vehicle already moved, the vehicle update is rolled
// back so status and ledger cannot drift apart.
func (p *Processor) commit(ctx context.Context, vehicle *vehiclemodels.Vehicle, entry ledgermodels.Entry, clearPass bool) error {
	driver := vehicle.CurrentDriver
	if entry.Driver != "Unknown" {
		driver = entry.Driver
	}
	update := vehiclestore.TransactionUpdate{
		VehicleID:     vehicle.ID,
		Status:        entry.Action,
		CurrentDriver: driver,
		ClearPass:     clearPass,
		Version:       vehicle.Version,
	}
	if err := p.vehicles.ApplyTransaction(ctx, update); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "vehicle was modified concurrently, retry")
		}
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "commit transaction")
	}

	if err := p.ledger.Append(ctx, entry); err != nil {
		p.rollback(ctx, vehicle, update)
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "append ledger entry")
	}
	return nil
}

func (p *Processor) rollback(ctx context.Context, vehicle *vehiclemodels.Vehicle, applied vehiclestore.TransactionUpdate) {
	// The revert gets its own deadline: the commit's may already be spent,
	// and an expired context would doom the rollback it caused.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.storeTimeout)
	defer cancel()

	revert := vehiclestore.TransactionUpdate{
		VehicleID:     vehicle.ID,
		Status:        vehicle.Status,
		CurrentDriver: vehicle.CurrentDriver,
		Version:       applied.Version + 1,
	}
	if err := p.vehicles.ApplyTransaction(ctx, revert); err != nil {
		p.logger.ErrorContext(ctx, "transaction rollback failed, vehicle status may be ahead of ledger",
			"vehicle_id", vehicle.ID, "error", err)
	}
}

func (p *Processor) publish(ctx context.Context, entry ledgermodels.Entry) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, entry); err != nil {
		p.logger.WarnContext(ctx, "ledger event publish failed",
			"entry_id", entry.ID, "error", err)
	}
}

// ProcessScan handles a QR code scan, which carries only the vehicle
// reference: the action is inferred by toggling the vehicle's current status.
func (p *Processor) ProcessScan(ctx context.Context, plateOrID, gateID, remarks string) (*Result, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionTransactions); err != nil {
		return nil, err
	}
	resolveCtx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	vehicle, err := p.resolveVehicle(resolveCtx, plateOrID)
	cancel()
	if err != nil {
		return nil, err
	}
	action := domain.TxActionIn
	if vehicle.Status == domain.TxActionIn {
		action = domain.TxActionOut
	}
	return p.Process(ctx, Request{
		PlateOrID: plateOrID,
		Action:    action.String(),
		GateID:    gateID,
		Remarks:   remarks,
	})
}
