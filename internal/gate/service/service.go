package service

import (
	"context"
	"errors"
	"log/slog"

	"gatepass/internal/gate/models"
	"gatepass/internal/gate/store"
	"gatepass/internal/policy"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"

	"github.com/google/uuid"
)

// Service manages the set of physical gates transactions can pass through.
type Service struct {
	gates  store.Store
	logger *slog.Logger
}

func New(gates store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gates: gates, logger: logger}
}

func (s *Service) Create(ctx context.Context, g *models.Gate) (*models.Gate, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceGates, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := s.gates.Create(ctx, g); err != nil {
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "gate created", "gate_id", g.ID, "name", g.Name)
	return g, nil
}

func (s *Service) Update(ctx context.Context, id string, g *models.Gate) (*models.Gate, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceGates, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.ID = id
	if err := s.gates.Update(ctx, g); err != nil {
		return nil, translate(err)
	}
	return g, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Gate, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceGates, policy.ActionRead); err != nil {
		return nil, err
	}
	g, err := s.gates.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

func (s *Service) List(ctx context.Context) ([]models.Gate, error) {
	role := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(role, policy.ResourceGates, policy.ActionRead); err != nil {
		return nil, err
	}
	gates, err := s.gates.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return gates, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "gate not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "gate already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "gate store unavailable")
	}
}
