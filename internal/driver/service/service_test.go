package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/driver/models"
	"gatepass/internal/driver/store"
	"gatepass/internal/policy"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store    *store.InMemory
	service  *Service
	adminCtx context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.service = New(s.store, nil)
	s.adminCtx = requestcontext.WithActor(context.Background(), "admin1", string(policy.RoleAdmin))
}

func (s *ServiceSuite) securityCtx() context.Context {
	return requestcontext.WithActor(context.Background(), "guard1", string(policy.RoleSecurity))
}

func (s *ServiceSuite) TestCreate() {
	s.Run("assigns id and defaults status", func() {
		created, err := s.service.Create(s.adminCtx, &models.Driver{Name: "J. Cruz", Department: "Logistics"})
		s.Require().NoError(err)
		s.NotEmpty(created.ID)
		s.Equal(models.DriverActive, created.Status)
	})

	s.Run("rejects empty name", func() {
		_, err := s.service.Create(s.adminCtx, &models.Driver{Name: "  "})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("security role denied", func() {
		_, err := s.service.Create(s.securityCtx(), &models.Driver{Name: "M. Reyes"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}

func (s *ServiceSuite) TestGetByName() {
	created, err := s.service.Create(s.adminCtx, &models.Driver{Name: "J. Cruz"})
	s.Require().NoError(err)

	s.Run("matches case-insensitively", func() {
		d, err := s.service.GetByName(s.adminCtx, "j. cruz")
		s.Require().NoError(err)
		s.Equal(created.ID, d.ID)
	})

	s.Run("trims padding", func() {
		d, err := s.service.GetByName(s.adminCtx, "  J. Cruz  ")
		s.Require().NoError(err)
		s.Equal(created.ID, d.ID)
	})

	s.Run("unknown name is not found", func() {
		_, err := s.service.GetByName(s.adminCtx, "nobody")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("security role may read", func() {
		d, err := s.service.GetByName(s.securityCtx(), "J. Cruz")
		s.Require().NoError(err)
		s.Equal(created.ID, d.ID)
	})
}

func (s *ServiceSuite) TestUpdateAndDelete() {
	created, err := s.service.Create(s.adminCtx, &models.Driver{Name: "J. Cruz"})
	s.Require().NoError(err)

	updated, err := s.service.Update(s.adminCtx, created.ID, &models.Driver{
		Name: "J. Cruz", Status: models.DriverInactive,
	})
	s.Require().NoError(err)
	s.Equal(models.DriverInactive, updated.Status)

	s.Require().NoError(s.service.Delete(s.adminCtx, created.ID))
	_, err = s.service.Get(s.adminCtx, created.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
