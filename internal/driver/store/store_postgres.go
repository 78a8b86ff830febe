package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gatepass/internal/driver/models"
	"gatepass/pkg/platform/sentinel"
)

// Postgres persists drivers in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, d *models.Driver) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drivers (id, name, department, phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, d.ID, d.Name, d.Department, d.Phone, string(d.Status))
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, d *models.Driver) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE drivers
		SET name = $2, department = $3, phone = $4, status = $5, updated_at = now()
		WHERE id = $1
	`, d.ID, d.Name, d.Department, d.Phone, string(d.Status))
	if err != nil {
		return fmt.Errorf("update driver: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update driver: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Driver, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *Postgres) FindByName(ctx context.Context, name string) (*models.Driver, error) {
	return s.findOne(ctx, `WHERE lower(name) = lower(btrim($1))`, name)
}

func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*models.Driver, error) {
	var d models.Driver
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, department, phone, status, created_at, updated_at
		FROM drivers `+where, arg,
	).Scan(&d.ID, &d.Name, &d.Department, &d.Phone, &status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find driver: %w", err)
	}
	d.Status = models.DriverStatus(status)
	return &d, nil
}

func (s *Postgres) List(ctx context.Context) ([]models.Driver, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, department, phone, status, created_at, updated_at
		FROM drivers ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []models.Driver
	for rows.Next() {
		var d models.Driver
		var status string
		if err := rows.Scan(&d.ID, &d.Name, &d.Department, &d.Phone, &status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		d.Status = models.DriverStatus(status)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
