package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gatepass/internal/policy"
	"gatepass/internal/vehicle/models"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// Postgres persists vehicles in PostgreSQL. Plate uniqueness is enforced by a
// unique index on the normalized plate; version checks ride on the UPDATE's
// WHERE clause.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, v *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (
			id, plate_number, plate_normalized, make_model, color, department,
			year, type, status, current_driver, assigned_drivers,
			access_status, allowed_gates, one_time_pass, version,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, now(), now())
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.PlateNumber, models.NormalizePlate(v.PlateNumber),
		v.MakeModel, v.Color, v.Department, v.Year, v.Type,
		string(v.Status), v.CurrentDriver, pq.Array(v.AssignedDrivers),
		v.AccessStatus, v.AllowedGates, v.OneTimePass,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	v.Version = 1
	return nil
}

func (s *Postgres) Update(ctx context.Context, v *models.Vehicle) error {
	if policy.Role(requestcontext.Role(ctx)) == policy.RoleSecurity {
		return sentinel.ErrInvalidState
	}

	query := `
		UPDATE vehicles SET
			plate_number = $2, plate_normalized = $3, make_model = $4,
			color = $5, department = $6, year = $7, type = $8, status = $9,
			current_driver = $10, assigned_drivers = $11, access_status = $12,
			allowed_gates = $13, one_time_pass = $14,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $15
	`
	res, err := s.db.ExecContext(ctx, query,
		v.ID, v.PlateNumber, models.NormalizePlate(v.PlateNumber),
		v.MakeModel, v.Color, v.Department, v.Year, v.Type,
		string(v.Status), v.CurrentDriver, pq.Array(v.AssignedDrivers),
		v.AccessStatus, v.AllowedGates, v.OneTimePass, v.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update vehicle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or the version moved under us.
		if _, findErr := s.FindByID(ctx, v.ID); findErr != nil {
			return findErr
		}
		return sentinel.ErrConflict
	}
	v.Version++
	return nil
}

func (s *Postgres) UpdateCurrentDriver(ctx context.Context, id, driver string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE vehicles
		SET current_driver = $2, version = version + 1, updated_at = now()
		WHERE id = $1
	`, id, driver)
	if err != nil {
		return fmt.Errorf("update current driver: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update current driver: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ApplyTransaction(ctx context.Context, tx TransactionUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE vehicles SET
			status = $2, current_driver = $3,
			one_time_pass = CASE WHEN $4 THEN false ELSE one_time_pass END,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $5
	`, tx.VehicleID, string(tx.Status), tx.CurrentDriver, tx.ClearPass, tx.Version)
	if err != nil {
		return fmt.Errorf("apply transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply transaction: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindByID(ctx, tx.VehicleID); findErr != nil {
			return findErr
		}
		return sentinel.ErrConflict
	}
	return nil
}

const vehicleColumns = `
	id, plate_number, make_model, color, department, year, type, status,
	current_driver, assigned_drivers, access_status, allowed_gates,
	one_time_pass, version, created_at, updated_at
`

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Vehicle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	return scanVehicle(row)
}

func (s *Postgres) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE plate_normalized = $1`,
		models.NormalizePlate(plate))
	return scanVehicle(row)
}

func (s *Postgres) List(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) MaxNumericID(ctx context.Context) (int, error) {
	// Non-numeric IDs count as 0 so one corrupt row cannot break generation.
	var maxID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(CASE WHEN id ~ '^[0-9]+$' THEN id::bigint ELSE 0 END)
		FROM vehicles
	`).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("max vehicle id: %w", err)
	}
	return int(maxID.Int64), nil
}

func (s *Postgres) CountByStatus(ctx context.Context, status domain.TxAction) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM vehicles WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count vehicles by status: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	var v models.Vehicle
	var status string
	err := row.Scan(
		&v.ID, &v.PlateNumber, &v.MakeModel, &v.Color, &v.Department,
		&v.Year, &v.Type, &status, &v.CurrentDriver,
		pq.Array(&v.AssignedDrivers), &v.AccessStatus, &v.AllowedGates,
		&v.OneTimePass, &v.Version, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	v.Status = domain.TxAction(status)
	return &v, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
