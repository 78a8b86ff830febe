package service

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"time"

	"gatepass/internal/ledger/models"
	"gatepass/internal/ledger/store"
	"gatepass/internal/policy"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

// VehicleCounter reports how many vehicles currently hold a given status.
// The summary view uses it for the "currently inside" figure.
type VehicleCounter interface {
	CountByStatus(ctx context.Context, status domain.TxAction) (int, error)
}

// Summary extends the store aggregate with the live vehicle count.
type Summary struct {
	models.Summary
	CurrentlyIn int
}

// Service exposes the transaction ledger: listing, aggregation, CSV export,
// and the super-admin data reset.
type Service struct {
	entries  store.Store
	vehicles VehicleCounter
	logger   *slog.Logger
}

func New(entries store.Store, vehicles VehicleCounter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{entries: entries, vehicles: vehicles, logger: logger}
}

func (s *Service) List(ctx context.Context, f models.Filter) ([]models.Entry, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionRead); err != nil {
		return nil, err
	}
	entries, err := s.entries.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "ledger store unavailable")
	}
	return entries, nil
}

func (s *Service) Summarize(ctx context.Context, f models.Filter) (Summary, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionRead); err != nil {
		return Summary{}, err
	}
	agg, err := s.entries.Summarize(ctx, f)
	if err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "ledger store unavailable")
	}
	inside, err := s.vehicles.CountByStatus(ctx, domain.TxActionIn)
	if err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "vehicle store unavailable")
	}
	return Summary{Summary: agg, CurrentlyIn: inside}, nil
}

var exportHeader = []string{
	"timestamp", "plate_number", "driver", "action", "gate",
	"remarks", "logged_by", "access_status",
}

// ExportCSV streams the filtered ledger as CSV. The filter's Limit is
// ignored: exports always cover the full filtered range.
func (s *Service) ExportCSV(ctx context.Context, f models.Filter, w io.Writer) error {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceVehicles, policy.ActionExportLogs); err != nil {
		return err
	}
	f.Limit = 0
	entries, err := s.entries.List(ctx, f)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "ledger store unavailable")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "write export header")
	}
	for _, e := range entries {
		record := []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			e.PlateNumber,
			e.Driver,
			string(e.Action),
			e.Gate,
			e.Remarks,
			e.LoggedBy,
			e.AccessStatus,
		}
		if err := cw.Write(record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "write export row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "flush export")
	}
	s.logger.InfoContext(ctx, "ledger exported",
		"rows", len(entries), "by", requestcontext.Username(ctx))
	return nil
}

// Clear truncates the ledger. Reserved for the super-admin data reset.
func (s *Service) Clear(ctx context.Context) error {
	username := requestcontext.Username(ctx)
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceSystem, policy.ActionClearData); err != nil {
		return err
	}
	if err := s.entries.Clear(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "ledger store unavailable")
	}
	s.logger.WarnContext(ctx, "transaction ledger cleared", "by", username)
	return nil
}
