package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"gatepass/internal/user/models"
	"gatepass/pkg/platform/sentinel"
)

// InMemory keeps accounts in maps guarded by a RWMutex.
type InMemory struct {
	mu         sync.RWMutex
	users      map[string]*models.User // by ID
	byUsername map[string]string       // lowercased username -> ID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
	}
}

func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *InMemory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := usernameKey(u.Username)
	if _, taken := s.byUsername[key]; taken {
		return sentinel.ErrConflict
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	s.users[u.ID] = &cp
	s.byUsername[key] = u.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[u.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	key := usernameKey(u.Username)
	if owner, taken := s.byUsername[key]; taken && owner != u.ID {
		return sentinel.ErrConflict
	}
	delete(s.byUsername, usernameKey(current.Username))
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	s.byUsername[key] = u.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byUsername[usernameKey(username)]; ok {
		cp := *s.users[id]
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byUsername, usernameKey(u.Username))
	delete(s.users, id)
	return nil
}
