package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"gatepass/internal/ledger/models"
	"gatepass/pkg/domain"
)

// InMemory is an append-only slice guarded by a RWMutex. Entries are handed
// out by value so callers cannot mutate the log.
type InMemory struct {
	mu      sync.RWMutex
	entries []models.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, e models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *InMemory) List(_ context.Context, f models.Filter) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Entry
	for _, e := range s.entries {
		if matches(e, f) {
			out = append(out, e)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		// Most recent entries win when a limit applies.
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}

func (s *InMemory) CountPlateActivity(_ context.Context, plate string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if strings.EqualFold(e.PlateNumber, plate) && !e.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) Summarize(_ context.Context, f models.Filter) (models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := models.Summary{PerGate: make(map[string]int)}
	for _, e := range s.entries {
		if !matches(e, f) {
			continue
		}
		switch e.Action {
		case domain.TxActionIn:
			sum.TotalIn++
		case domain.TxActionOut:
			sum.TotalOut++
		}
		sum.PerGate[e.Gate]++
	}
	return sum, nil
}

func (s *InMemory) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func matches(e models.Entry, f models.Filter) bool {
	if f.PlateNumber != "" && !strings.EqualFold(e.PlateNumber, f.PlateNumber) {
		return false
	}
	if f.Gate != "" && e.Gate != f.Gate {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	return true
}
