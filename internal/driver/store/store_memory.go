package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"gatepass/internal/driver/models"
	"gatepass/pkg/platform/sentinel"
)

// InMemory keeps drivers in a map guarded by a RWMutex.
type InMemory struct {
	mu      sync.RWMutex
	drivers map[string]*models.Driver
}

func NewInMemory() *InMemory {
	return &InMemory{drivers: make(map[string]*models.Driver)}
}

func (s *InMemory) Create(_ context.Context, d *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.drivers[d.ID]; exists {
		return sentinel.ErrConflict
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	cp := *d
	s.drivers[d.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, d *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.drivers[d.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	d.CreatedAt = current.CreatedAt
	d.UpdatedAt = time.Now()
	cp := *d
	s.drivers[d.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.drivers[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.drivers {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, *d)
	}
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.drivers, id)
	return nil
}
