package models

import (
	"strings"
	"time"

	dErrors "gatepass/pkg/domain-errors"
)

// DriverStatus marks whether a driver is available for assignment.
type DriverStatus string

const (
	DriverActive   DriverStatus = "Active"
	DriverInactive DriverStatus = "Inactive"
)

// Driver lifecycle is independent of vehicles: drivers are referenced by name
// or ID from vehicle records and are never cascading-deleted.
type Driver struct {
	ID         string
	Name       string
	Department string
	Phone      string
	Status     DriverStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (d *Driver) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "driver name is required")
	}
	return nil
}
