package models

import (
	"strings"
	"time"

	"gatepass/internal/policy"
	dErrors "gatepass/pkg/domain-errors"
)

// UserStatus gates login eligibility; the authenticator checks it, this
// service only stores it.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// User is an operator account. The password hash is opaque to this service;
// hashing and verification live with the authenticator.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         policy.Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if _, err := policy.ParseRole(string(u.Role)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid role")
	}
	switch u.Status {
	case UserActive, UserInactive, UserSuspended:
	default:
		return dErrors.Newf(dErrors.CodeValidation, "invalid user status: %q", u.Status)
	}
	return nil
}
