package store

import (
	"context"
	"sync"
	"time"

	"gatepass/internal/gate/models"
	"gatepass/pkg/platform/sentinel"
)

// InMemory keeps gates in a map guarded by a RWMutex.
type InMemory struct {
	mu    sync.RWMutex
	gates map[string]*models.Gate
}

func NewInMemory() *InMemory {
	return &InMemory{gates: make(map[string]*models.Gate)}
}

func (s *InMemory) Create(_ context.Context, g *models.Gate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.gates[g.ID]; exists {
		return sentinel.ErrConflict
	}
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	cp := *g
	s.gates[g.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, g *models.Gate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.gates[g.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	g.CreatedAt = current.CreatedAt
	g.UpdatedAt = time.Now()
	cp := *g
	s.gates[g.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Gate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.gates[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]models.Gate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Gate, 0, len(s.gates))
	for _, g := range s.gates {
		out = append(out, *g)
	}
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gates[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.gates, id)
	return nil
}

func (s *InMemory) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.gates[id]
	return ok, nil
}
