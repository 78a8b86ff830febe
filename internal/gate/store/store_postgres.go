package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gatepass/internal/gate/models"
	"gatepass/pkg/platform/sentinel"
)

// Postgres persists gates in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, g *models.Gate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gates (id, name, created_at, updated_at)
		VALUES ($1, $2, now(), now())
	`, g.ID, g.Name)
	if err != nil {
		return fmt.Errorf("create gate: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, g *models.Gate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE gates SET name = $2, updated_at = now() WHERE id = $1
	`, g.ID, g.Name)
	if err != nil {
		return fmt.Errorf("update gate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update gate: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Gate, error) {
	var g models.Gate
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM gates WHERE id = $1
	`, id).Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find gate: %w", err)
	}
	return &g, nil
}

func (s *Postgres) List(ctx context.Context) ([]models.Gate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at FROM gates ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list gates: %w", err)
	}
	defer rows.Close()

	var out []models.Gate
	for rows.Next() {
		var g models.Gate
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan gate: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete gate: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM gates WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("gate exists: %w", err)
	}
	return exists, nil
}
