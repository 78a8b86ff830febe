package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/audit"
	ledgermodels "gatepass/internal/ledger/models"
	ledgerstore "gatepass/internal/ledger/store"
	"gatepass/internal/policy"
	"gatepass/internal/vehicle/models"
	"gatepass/internal/vehicle/store"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

type VehicleServiceSuite struct {
	suite.Suite
	vehicles   *store.InMemory
	ledger     *ledgerstore.InMemory
	auditStore *audit.InMemoryStore
	service    *Service

	adminCtx    context.Context
	superCtx    context.Context
	securityCtx context.Context
}

func TestVehicleServiceSuite(t *testing.T) {
	suite.Run(t, new(VehicleServiceSuite))
}

func (s *VehicleServiceSuite) SetupTest() {
	s.vehicles = store.NewInMemory()
	s.ledger = ledgerstore.NewInMemory()
	s.auditStore = audit.NewInMemoryStore()
	s.service = New(s.vehicles, s.ledger, audit.NewService(s.auditStore, nil))

	s.adminCtx = requestcontext.WithActor(context.Background(), "alice", string(policy.RoleAdmin))
	s.superCtx = requestcontext.WithActor(context.Background(), "root", string(policy.RoleSuperAdmin))
	s.securityCtx = requestcontext.WithActor(context.Background(), "guard1", string(policy.RoleSecurity))
}

func (s *VehicleServiceSuite) create(plate string) *models.Vehicle {
	v, err := s.service.Create(s.adminCtx, &models.Vehicle{PlateNumber: plate})
	s.Require().NoError(err)
	return v
}

func (s *VehicleServiceSuite) TestCreate() {
	s.Run("generates sequential zero-padded IDs", func() {
		s.Equal("0001", s.create("AAA-111").ID)
		s.Equal("0002", s.create("BBB-222").ID)
	})

	s.Run("defaults status and access status", func() {
		v := s.create("CCC-333")
		s.Equal(domain.TxActionOut, v.Status)
		s.Equal("Access", v.AccessStatus)
	})

	s.Run("rejects duplicate plate", func() {
		_, err := s.service.Create(s.adminCtx, &models.Vehicle{PlateNumber: "aaa-111"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicatePlate))
	})

	s.Run("rejects missing plate", func() {
		_, err := s.service.Create(s.adminCtx, &models.Vehicle{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("security role may not create", func() {
		_, err := s.service.Create(s.securityCtx, &models.Vehicle{PlateNumber: "DDD-444"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("creates are audited", func() {
		entries, err := s.auditStore.List(context.Background(), "alice")
		s.Require().NoError(err)
		s.Require().NotEmpty(entries)
		s.Equal(audit.ActionCreate, entries[0].Action)
		s.Nil(entries[0].Old)
		s.NotEmpty(entries[0].New)
	})
}

func (s *VehicleServiceSuite) TestUpdate() {
	created := s.create("AAA-111")

	s.Run("updates mutable fields and keeps status", func() {
		updated, err := s.service.Update(s.adminCtx, created.ID, &models.Vehicle{
			PlateNumber: "AAA-111", Color: "white", AccessStatus: "No Access",
		})
		s.Require().NoError(err)
		s.Equal("white", updated.Color)
		s.Equal(domain.TxActionOut, updated.Status)
		s.Equal(created.ID, updated.ID)
	})

	s.Run("rejects plate owned by another vehicle", func() {
		s.create("BBB-222")
		_, err := s.service.Update(s.adminCtx, created.ID, &models.Vehicle{PlateNumber: "BBB-222"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicatePlate))
	})

	s.Run("unknown vehicle is not found", func() {
		_, err := s.service.Update(s.adminCtx, "9999", &models.Vehicle{PlateNumber: "ZZZ-999"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("security role may not update", func() {
		_, err := s.service.Update(s.securityCtx, created.ID, &models.Vehicle{PlateNumber: "AAA-111"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("updates are audited with old and new state", func() {
		entries, err := s.auditStore.List(context.Background(), "alice")
		s.Require().NoError(err)
		var found bool
		for _, e := range entries {
			if e.Action == audit.ActionUpdate && e.Old != nil {
				found = true
			}
		}
		s.True(found)
	})
}

func (s *VehicleServiceSuite) TestUpdateDriver() {
	created := s.create("AAA-111")

	s.Run("security role may reassign the driver", func() {
		s.Require().NoError(s.service.UpdateDriver(s.securityCtx, created.ID, "J. Cruz"))
		v, err := s.service.Get(s.securityCtx, created.ID)
		s.Require().NoError(err)
		s.Equal("J. Cruz", v.CurrentDriver)
	})

	s.Run("unknown vehicle is not found", func() {
		err := s.service.UpdateDriver(s.securityCtx, "9999", "J. Cruz")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *VehicleServiceSuite) TestDelete() {
	s.Run("only super-admin may delete", func() {
		created := s.create("AAA-111")
		_, err := s.service.Delete(s.adminCtx, created.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("deletes outright without recent activity", func() {
		created := s.create("BBB-222")
		downgraded, err := s.service.Delete(s.superCtx, created.ID)
		s.Require().NoError(err)
		s.False(downgraded)

		_, err = s.service.Get(s.superCtx, created.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("recent ledger activity downgrades to no access", func() {
		created := s.create("CCC-333")
		s.Require().NoError(s.ledger.Append(context.Background(), ledgermodels.Entry{
			ID: "e1", Timestamp: time.Now().Add(-time.Hour),
			PlateNumber: "CCC-333", Action: domain.TxActionIn,
		}))

		downgraded, err := s.service.Delete(s.superCtx, created.ID)
		s.Require().NoError(err)
		s.True(downgraded)

		v, err := s.service.Get(s.superCtx, created.ID)
		s.Require().NoError(err)
		s.Equal("No Access", v.AccessStatus)
	})

	s.Run("activity outside the window does not block deletion", func() {
		created := s.create("DDD-444")
		s.Require().NoError(s.ledger.Append(context.Background(), ledgermodels.Entry{
			ID: "e2", Timestamp: time.Now().Add(-60 * 24 * time.Hour),
			PlateNumber: "DDD-444", Action: domain.TxActionIn,
		}))

		downgraded, err := s.service.Delete(s.superCtx, created.ID)
		s.Require().NoError(err)
		s.False(downgraded)
	})
}

func (s *VehicleServiceSuite) TestStoreErrTranslation() {
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(storeErr(sentinel.ErrNotFound, "vehicle")))
	s.Equal(dErrors.CodeConflict, dErrors.CodeOf(storeErr(sentinel.ErrConflict, "vehicle")))
	s.Equal(dErrors.CodePermissionDenied, dErrors.CodeOf(storeErr(sentinel.ErrInvalidState, "vehicle")))
	s.Equal(dErrors.CodeStorageUnavailable, dErrors.CodeOf(storeErr(context.DeadlineExceeded, "vehicle")))
}
