package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// IDWidth is the zero-padded display width of vehicle IDs ("0001").
const IDWidth = 4

// Vehicle is a registered vehicle. Status and OneTimePass are mutated only by
// the transaction processor; everything else changes through privileged CRUD.
type Vehicle struct {
	// ID is a stable zero-padded numeric identifier, immutable after creation.
	ID string
	// PlateNumber is the business key, unique case-insensitively after
	// trimming.
	PlateNumber string

	MakeModel  string
	Color      string
	Department string
	Year       int
	Type       string

	// Status is the action of the vehicle's most recent transaction.
	Status domain.TxAction
	// CurrentDriver is free text or a driver reference.
	CurrentDriver string
	// AssignedDrivers are the driver identifiers authorized on this vehicle.
	AssignedDrivers []string

	// AccessStatus is stored raw. Only the normalized values "banned" and
	// "no access" restrict; anything else means unrestricted access.
	AccessStatus string
	// AllowedGates is the serialized gate allow-list; empty means all gates.
	AllowedGates string
	// OneTimePass grants a single bypass of access-status restrictions.
	OneTimePass bool

	// Version guards against lost updates; stores bump it on every write.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizePlate canonicalizes a plate number for uniqueness comparison and
// lookup: trimmed and uppercased.
func NormalizePlate(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FormatID renders a numeric vehicle ID zero-padded to the display width.
func FormatID(n int) string {
	return fmt.Sprintf("%0*d", IDWidth, n)
}

// NumericID parses a vehicle ID, treating non-numeric or missing values as 0
// so ID generation tolerates corrupted rows in existing data.
func NumericID(id string) int {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Validate checks the fields required on every create/update.
func (v *Vehicle) Validate() error {
	if strings.TrimSpace(v.PlateNumber) == "" {
		return dErrors.New(dErrors.CodeValidation, "plate number is required")
	}
	return nil
}

// Snapshot flattens the vehicle field-by-field for audit diffs. Keys follow
// the record's business vocabulary so the diff reads like the original sheet.
func (v *Vehicle) Snapshot() map[string]string {
	return map[string]string{
		"id":               v.ID,
		"plate_number":     v.PlateNumber,
		"make_model":       v.MakeModel,
		"color":            v.Color,
		"department":       v.Department,
		"year":             strconv.Itoa(v.Year),
		"type":             v.Type,
		"status":           string(v.Status),
		"current_driver":   v.CurrentDriver,
		"assigned_drivers": strings.Join(v.AssignedDrivers, ","),
		"access_status":    v.AccessStatus,
		"allowed_gates":    v.AllowedGates,
		"one_time_pass":    strconv.FormatBool(v.OneTimePass),
	}
}

// Clone returns a deep copy so stores can hand out records without aliasing
// their internal state.
func (v *Vehicle) Clone() *Vehicle {
	cp := *v
	cp.AssignedDrivers = append([]string(nil), v.AssignedDrivers...)
	return &cp
}
