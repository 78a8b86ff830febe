package store

import (
	"context"
	"sync"
	"time"

	"gatepass/internal/policy"
	"gatepass/internal/vehicle/models"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// InMemory keeps vehicles in maps guarded by a RWMutex. It favors clarity
// over performance and backs unit tests plus single-node deployments.
type InMemory struct {
	mu       sync.RWMutex
	vehicles map[string]*models.Vehicle // by ID
	byPlate  map[string]string          // normalized plate -> ID
}

func NewInMemory() *InMemory {
	return &InMemory{
		vehicles: make(map[string]*models.Vehicle),
		byPlate:  make(map[string]string),
	}
}

func (s *InMemory) Create(_ context.Context, v *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plate := models.NormalizePlate(v.PlateNumber)
	if _, taken := s.byPlate[plate]; taken {
		return sentinel.ErrConflict
	}
	if _, exists := s.vehicles[v.ID]; exists {
		return sentinel.ErrConflict
	}

	now := time.Now()
	v.Version = 1
	v.CreatedAt = now
	v.UpdatedAt = now
	s.vehicles[v.ID] = v.Clone()
	s.byPlate[plate] = v.ID
	return nil
}

func (s *InMemory) Update(ctx context.Context, v *models.Vehicle) error {
	if policy.Role(requestcontext.Role(ctx)) == policy.RoleSecurity {
		// Security may only touch the current driver; see UpdateCurrentDriver.
		return sentinel.ErrInvalidState
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.vehicles[v.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if v.Version != current.Version {
		return sentinel.ErrConflict
	}

	plate := models.NormalizePlate(v.PlateNumber)
	if owner, taken := s.byPlate[plate]; taken && owner != v.ID {
		return sentinel.ErrConflict
	}

	delete(s.byPlate, models.NormalizePlate(current.PlateNumber))
	v.Version = current.Version + 1
	v.CreatedAt = current.CreatedAt
	v.UpdatedAt = time.Now()
	s.vehicles[v.ID] = v.Clone()
	s.byPlate[plate] = v.ID
	return nil
}

func (s *InMemory) UpdateCurrentDriver(_ context.Context, id, driver string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	v.CurrentDriver = driver
	v.Version++
	v.UpdatedAt = time.Now()
	return nil
}

func (s *InMemory) ApplyTransaction(_ context.Context, tx TransactionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[tx.VehicleID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if v.Version != tx.Version {
		return sentinel.ErrConflict
	}
	v.Status = tx.Status
	v.CurrentDriver = tx.CurrentDriver
	if tx.ClearPass {
		v.OneTimePass = false
	}
	v.Version++
	v.UpdatedAt = time.Now()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vehicles[id]; ok {
		return v.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByPlate(_ context.Context, plate string) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byPlate[models.NormalizePlate(plate)]; ok {
		return s.vehicles[id].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, *v.Clone())
	}
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byPlate, models.NormalizePlate(v.PlateNumber))
	delete(s.vehicles, id)
	return nil
}

func (s *InMemory) MaxNumericID(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	maxID := 0
	for id := range s.vehicles {
		if n := models.NumericID(id); n > maxID {
			maxID = n
		}
	}
	return maxID, nil
}

func (s *InMemory) CountByStatus(_ context.Context, status domain.TxAction) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, v := range s.vehicles {
		if v.Status == status {
			count++
		}
	}
	return count, nil
}
