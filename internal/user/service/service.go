package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gatepass/internal/policy"
	"gatepass/internal/user/models"
	"gatepass/internal/user/store"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages operator accounts. Role assignment is constrained by the
// acting user's own role: nobody can create or modify an account with a role
// they cannot manage.
type Service struct {
	users  store.Store
	logger *slog.Logger
}

func New(users store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, logger: logger}
}

func (s *Service) Create(ctx context.Context, username, password string, role policy.Role) (*models.User, error) {
	actingRole := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(actingRole, policy.ResourceUsers, policy.ActionCreate); err != nil {
		return nil, err
	}
	if !policy.CanManageRole(actingRole, role) {
		return nil, dErrors.Newf(dErrors.CodePermissionDenied,
			"role %q may not manage accounts with role %q", actingRole, role)
	}
	if len(password) < 8 {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.UserActive,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "user created", "username", u.Username, "role", u.Role)
	return u, nil
}

// Update modifies role and status. A caller must be able to manage both the
// user's current role and the role being assigned.
func (s *Service) Update(ctx context.Context, id string, role policy.Role, status models.UserStatus) (*models.User, error) {
	actingRole := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(actingRole, policy.ResourceUsers, policy.ActionUpdate); err != nil {
		return nil, err
	}
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !policy.CanManageRole(actingRole, current.Role) || !policy.CanManageRole(actingRole, role) {
		return nil, dErrors.Newf(dErrors.CodePermissionDenied,
			"role %q may not manage accounts with role %q", actingRole, role)
	}

	current.Role = role
	current.Status = status
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, current); err != nil {
		return nil, translate(err)
	}
	return current, nil
}

// SetPassword rehashes and stores a new password for the account.
func (s *Service) SetPassword(ctx context.Context, id, password string) error {
	actingRole := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(actingRole, policy.ResourceUsers, policy.ActionUpdate); err != nil {
		return err
	}
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !policy.CanManageRole(actingRole, current.Role) {
		return dErrors.Newf(dErrors.CodePermissionDenied,
			"role %q may not manage accounts with role %q", actingRole, current.Role)
	}
	if len(password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}
	current.PasswordHash = string(hash)
	return translateNil(s.users.Update(ctx, current))
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	actingRole := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(actingRole, policy.ResourceUsers, policy.ActionRead); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	actingRole := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(actingRole, policy.ResourceUsers, policy.ActionRead); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actingRole := policy.Role(requestcontext.Role(ctx))
	if err := policy.Enforce(actingRole, policy.ResourceUsers, policy.ActionDelete); err != nil {
		return err
	}
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !policy.CanManageRole(actingRole, current.Role) {
		return dErrors.Newf(dErrors.CodePermissionDenied,
			"role %q may not manage accounts with role %q", actingRole, current.Role)
	}
	return translateNil(s.users.Delete(ctx, id))
}

// Authenticate verifies credentials for login. It does not require a request
// actor: it is the call that establishes one.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, translate(err)
	}
	// Unknown user, wrong password, and disabled account all answer the same
	// way so a login prompt cannot be used to probe account state.
	if u.Status != models.UserActive {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return u, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "username already taken")
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "user store unavailable")
	}
}

func translateNil(err error) error {
	if err == nil {
		return nil
	}
	return translate(err)
}
