package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/ledger/models"
	"gatepass/pkg/domain"
)

type InMemoryLedgerSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	base  time.Time
}

func TestInMemoryLedgerSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLedgerSuite))
}

func (s *InMemoryLedgerSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.base = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	seed := []models.Entry{
		{ID: "e1", Timestamp: s.base, PlateNumber: "AAA-111", Action: domain.TxActionIn, Gate: "north"},
		{ID: "e2", Timestamp: s.base.Add(time.Hour), PlateNumber: "BBB-222", Action: domain.TxActionIn, Gate: "south"},
		{ID: "e3", Timestamp: s.base.Add(2 * time.Hour), PlateNumber: "AAA-111", Action: domain.TxActionOut, Gate: "north"},
		{ID: "e4", Timestamp: s.base.Add(3 * time.Hour), PlateNumber: "CCC-333", Action: domain.TxActionIn, Gate: "north"},
	}
	for _, e := range seed {
		s.Require().NoError(s.store.Append(s.ctx, e))
	}
}

func (s *InMemoryLedgerSuite) TestListFilters() {
	s.Run("no filter returns everything in order", func() {
		entries, err := s.store.List(s.ctx, models.Filter{})
		s.Require().NoError(err)
		s.Require().Len(entries, 4)
		s.Equal("e1", entries[0].ID)
		s.Equal("e4", entries[3].ID)
	})

	s.Run("filters by plate case-insensitively", func() {
		entries, err := s.store.List(s.ctx, models.Filter{PlateNumber: "aaa-111"})
		s.Require().NoError(err)
		s.Len(entries, 2)
	})

	s.Run("filters by gate and action", func() {
		entries, err := s.store.List(s.ctx, models.Filter{Gate: "north", Action: domain.TxActionIn})
		s.Require().NoError(err)
		s.Len(entries, 2)
	})

	s.Run("filters by time range", func() {
		entries, err := s.store.List(s.ctx, models.Filter{
			Since: s.base.Add(30 * time.Minute),
			Until: s.base.Add(2 * time.Hour),
		})
		s.Require().NoError(err)
		s.Len(entries, 2)
	})

	s.Run("limit keeps the most recent entries", func() {
		entries, err := s.store.List(s.ctx, models.Filter{Limit: 2})
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal("e3", entries[0].ID)
		s.Equal("e4", entries[1].ID)
	})
}

func (s *InMemoryLedgerSuite) TestCountPlateActivity() {
	count, err := s.store.CountPlateActivity(s.ctx, "AAA-111", s.base.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.CountPlateActivity(s.ctx, "aaa-111", s.base)
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.store.CountPlateActivity(s.ctx, "ZZZ-999", s.base)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *InMemoryLedgerSuite) TestSummarize() {
	sum, err := s.store.Summarize(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Equal(3, sum.TotalIn)
	s.Equal(1, sum.TotalOut)
	s.Equal(3, sum.PerGate["north"])
	s.Equal(1, sum.PerGate["south"])
}

func (s *InMemoryLedgerSuite) TestClear() {
	s.Require().NoError(s.store.Clear(s.ctx))
	entries, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *InMemoryLedgerSuite) TestAppendOnly() {
	// Handed-out slices are copies of entry values; mutating them must not
	// affect the log.
	entries, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	entries[0].PlateNumber = "MUTATED"

	again, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Equal("AAA-111", again[0].PlateNumber)
}

func (s *InMemoryLedgerSuite) TestConcurrentAppends() {
	done := make(chan struct{})
	for w := range 4 {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := range 25 {
				_ = s.store.Append(s.ctx, models.Entry{
					ID:          fmt.Sprintf("w%d-%d", w, i),
					Timestamp:   s.base,
					PlateNumber: "AAA-111",
					Action:      domain.TxActionIn,
				})
			}
		}()
	}
	for range 4 {
		<-done
	}
	entries, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Len(entries, 104)
}
