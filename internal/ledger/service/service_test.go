package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/ledger/models"
	"gatepass/internal/ledger/store"
	"gatepass/internal/policy"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

type stubVehicleCounter struct{ inside int }

func (s stubVehicleCounter) CountByStatus(context.Context, domain.TxAction) (int, error) {
	return s.inside, nil
}

type LedgerServiceSuite struct {
	suite.Suite
	entries *store.InMemory
	service *Service

	adminCtx    context.Context
	superCtx    context.Context
	securityCtx context.Context
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.entries = store.NewInMemory()
	s.service = New(s.entries, stubVehicleCounter{inside: 3}, nil)

	s.adminCtx = requestcontext.WithActor(context.Background(), "alice", string(policy.RoleAdmin))
	s.superCtx = requestcontext.WithActor(context.Background(), "root", string(policy.RoleSuperAdmin))
	s.securityCtx = requestcontext.WithActor(context.Background(), "guard1", string(policy.RoleSecurity))

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.Require().NoError(s.entries.Append(context.Background(), models.Entry{
		ID: "e1", Timestamp: base, PlateNumber: "AAA-111", Driver: "J. Cruz",
		Action: domain.TxActionIn, Gate: "north", LoggedBy: "guard1", AccessStatus: "Access",
	}))
	s.Require().NoError(s.entries.Append(context.Background(), models.Entry{
		ID: "e2", Timestamp: base.Add(time.Hour), PlateNumber: "AAA-111", Driver: "J. Cruz",
		Action: domain.TxActionOut, Gate: "north", LoggedBy: "guard1", AccessStatus: "Access",
	}))
}

func (s *LedgerServiceSuite) TestList() {
	entries, err := s.service.List(s.securityCtx, models.Filter{})
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *LedgerServiceSuite) TestSummarize() {
	sum, err := s.service.Summarize(s.adminCtx, models.Filter{})
	s.Require().NoError(err)
	s.Equal(1, sum.TotalIn)
	s.Equal(1, sum.TotalOut)
	s.Equal(3, sum.CurrentlyIn)
	s.Equal(2, sum.PerGate["north"])
}

func (s *LedgerServiceSuite) TestExportCSV() {
	s.Run("admin export includes header and all rows", func() {
		var buf bytes.Buffer
		s.Require().NoError(s.service.ExportCSV(s.adminCtx, models.Filter{}, &buf))

		records, err := csv.NewReader(&buf).ReadAll()
		s.Require().NoError(err)
		s.Require().Len(records, 3)
		s.Equal(exportHeader, records[0])
		s.Equal("AAA-111", records[1][1])
		s.Equal("IN", records[1][3])
		s.Equal("2026-05-01T08:00:00Z", records[1][0])
	})

	s.Run("filter limit is ignored for exports", func() {
		var buf bytes.Buffer
		s.Require().NoError(s.service.ExportCSV(s.adminCtx, models.Filter{Limit: 1}, &buf))
		records, err := csv.NewReader(&buf).ReadAll()
		s.Require().NoError(err)
		s.Len(records, 3)
	})

	s.Run("security role may not export", func() {
		var buf bytes.Buffer
		err := s.service.ExportCSV(s.securityCtx, models.Filter{}, &buf)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
		s.Zero(buf.Len())
	})
}

func (s *LedgerServiceSuite) TestClear() {
	s.Run("admin may not clear", func() {
		err := s.service.Clear(s.adminCtx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("super-admin clears the ledger", func() {
		s.Require().NoError(s.service.Clear(s.superCtx))
		entries, err := s.service.List(s.superCtx, models.Filter{})
		s.Require().NoError(err)
		s.Empty(entries)
	})
}
