//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/policy"
	"gatepass/internal/vehicle/models"
	"gatepass/internal/vehicle/store"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
	"gatepass/pkg/testutil/containers"
)

type PostgresVehicleStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	ctx      context.Context
}

func TestPostgresVehicleStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresVehicleStoreSuite))
}

func (s *PostgresVehicleStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = requestcontext.WithActor(context.Background(), "tester", string(policy.RoleAdmin))
}

func (s *PostgresVehicleStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "vehicles"))
}

func (s *PostgresVehicleStoreSuite) newVehicle(id, plate string) *models.Vehicle {
	return &models.Vehicle{
		ID:              id,
		PlateNumber:     plate,
		MakeModel:       "Toyota Hilux",
		Status:          domain.TxActionOut,
		AssignedDrivers: []string{"J. Cruz"},
		AccessStatus:    "Access",
	}
}

func (s *PostgresVehicleStoreSuite) TestRoundTrip() {
	v := s.newVehicle("0001", "ABC-123")
	v.AllowedGates = "north,south"
	v.OneTimePass = true
	s.Require().NoError(s.store.Create(s.ctx, v))

	found, err := s.store.FindByID(s.ctx, "0001")
	s.Require().NoError(err)
	s.Equal("ABC-123", found.PlateNumber)
	s.Equal([]string{"J. Cruz"}, found.AssignedDrivers)
	s.Equal("north,south", found.AllowedGates)
	s.True(found.OneTimePass)
	s.Equal(int64(1), found.Version)

	byPlate, err := s.store.FindByPlate(s.ctx, "abc-123")
	s.Require().NoError(err)
	s.Equal("0001", byPlate.ID)
}

func (s *PostgresVehicleStoreSuite) TestUniqueIndexBackstop() {
	s.Require().NoError(s.store.Create(s.ctx, s.newVehicle("0001", "ABC-123")))
	err := s.store.Create(s.ctx, s.newVehicle("0002", "abc-123"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresVehicleStoreSuite) TestVersionGuard() {
	v := s.newVehicle("0001", "ABC-123")
	s.Require().NoError(s.store.Create(s.ctx, v))

	fresh, err := s.store.FindByID(s.ctx, "0001")
	s.Require().NoError(err)
	fresh.Color = "white"
	s.Require().NoError(s.store.Update(s.ctx, fresh))

	stale := s.newVehicle("0001", "ABC-123")
	stale.Version = 1
	s.Require().ErrorIs(s.store.Update(s.ctx, stale), sentinel.ErrConflict)
}

func (s *PostgresVehicleStoreSuite) TestApplyTransactionSerializes() {
	v := s.newVehicle("0001", "ABC-123")
	s.Require().NoError(s.store.Create(s.ctx, v))

	// Same-version commits race; exactly one may win.
	const goroutines = 10
	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.ApplyTransaction(s.ctx, store.TransactionUpdate{
				VehicleID: "0001", Status: domain.TxActionIn,
				CurrentDriver: "J. Cruz", Version: 1,
			})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *PostgresVehicleStoreSuite) TestMaxNumericIDWithCorruptRows() {
	s.Require().NoError(s.store.Create(s.ctx, s.newVehicle("0009", "AAA-111")))
	s.Require().NoError(s.store.Create(s.ctx, s.newVehicle("legacy-id", "BBB-222")))

	maxID, err := s.store.MaxNumericID(s.ctx)
	s.Require().NoError(err)
	s.Equal(9, maxID)
}

func (s *PostgresVehicleStoreSuite) TestSecurityRoleRestriction() {
	s.Require().NoError(s.store.Create(s.ctx, s.newVehicle("0001", "ABC-123")))
	secCtx := requestcontext.WithActor(context.Background(), "guard", string(policy.RoleSecurity))

	v, err := s.store.FindByID(secCtx, "0001")
	s.Require().NoError(err)
	s.Require().ErrorIs(s.store.Update(secCtx, v), sentinel.ErrInvalidState)
	s.Require().NoError(s.store.UpdateCurrentDriver(secCtx, "0001", "J. Cruz"))
}
