//go:build integration

package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/policy"
	"gatepass/internal/vehicle/cache"
	"gatepass/internal/vehicle/models"
	"gatepass/internal/vehicle/store"
	"gatepass/pkg/domain"
	"gatepass/pkg/requestcontext"
	"gatepass/pkg/testutil/containers"
)

type VehicleCacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backing *store.InMemory
	cached  *cache.Cached
	ctx     context.Context
}

func TestVehicleCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(VehicleCacheSuite))
}

func (s *VehicleCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *VehicleCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backing = store.NewInMemory()
	s.cached = cache.New(s.backing, s.redis.Client, nil)
	s.ctx = requestcontext.WithActor(context.Background(), "tester", string(policy.RoleAdmin))
}

func (s *VehicleCacheSuite) seed(id, plate string) {
	s.Require().NoError(s.cached.Create(s.ctx, &models.Vehicle{
		ID: id, PlateNumber: plate, Status: domain.TxActionOut, AccessStatus: "Access",
	}))
}

func (s *VehicleCacheSuite) TestReadThrough() {
	s.seed("0001", "ABC-123")

	// First read fills the cache; serve the second from it by mutating the
	// backing store directly and observing the stale-but-cached value.
	v, err := s.cached.FindByID(s.ctx, "0001")
	s.Require().NoError(err)
	s.Equal("ABC-123", v.PlateNumber)

	s.Require().NoError(s.backing.UpdateCurrentDriver(s.ctx, "0001", "sneaky"))
	again, err := s.cached.FindByID(s.ctx, "0001")
	s.Require().NoError(err)
	s.Empty(again.CurrentDriver)
}

func (s *VehicleCacheSuite) TestWriteInvalidates() {
	s.seed("0001", "ABC-123")

	v, err := s.cached.FindByID(s.ctx, "0001")
	s.Require().NoError(err)

	v.Color = "white"
	s.Require().NoError(s.cached.Update(s.ctx, v))

	fresh, err := s.cached.FindByID(s.ctx, "0001")
	s.Require().NoError(err)
	s.Equal("white", fresh.Color)
}

func (s *VehicleCacheSuite) TestPlateKeyFollowsPlateChange() {
	s.seed("0001", "ABC-123")

	_, err := s.cached.FindByPlate(s.ctx, "ABC-123")
	s.Require().NoError(err)

	v, err := s.cached.FindByID(s.ctx, "0001")
	s.Require().NoError(err)
	v.PlateNumber = "NEW-456"
	s.Require().NoError(s.cached.Update(s.ctx, v))

	_, err = s.cached.FindByPlate(s.ctx, "ABC-123")
	s.Require().Error(err)
	found, err := s.cached.FindByPlate(s.ctx, "NEW-456")
	s.Require().NoError(err)
	s.Equal("0001", found.ID)
}

func (s *VehicleCacheSuite) TestApplyTransactionInvalidates() {
	s.seed("0001", "ABC-123")

	_, err := s.cached.FindByID(s.ctx, "0001")
	s.Require().NoError(err)

	s.Require().NoError(s.cached.ApplyTransaction(s.ctx, store.TransactionUpdate{
		VehicleID: "0001", Status: domain.TxActionIn, CurrentDriver: "J. Cruz", Version: 1,
	}))

	fresh, err := s.cached.FindByID(s.ctx, "0001")
	s.Require().NoError(err)
	s.Equal(domain.TxActionIn, fresh.Status)
	s.Equal("J. Cruz", fresh.CurrentDriver)
}

func (s *VehicleCacheSuite) TestDeleteInvalidates() {
	s.seed("0001", "ABC-123")
	_, err := s.cached.FindByPlate(s.ctx, "ABC-123")
	s.Require().NoError(err)

	s.Require().NoError(s.cached.Delete(s.ctx, "0001"))

	_, err = s.cached.FindByID(s.ctx, "0001")
	s.Require().Error(err)
	_, err = s.cached.FindByPlate(s.ctx, "ABC-123")
	s.Require().Error(err)
}
