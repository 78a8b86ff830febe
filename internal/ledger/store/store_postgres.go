package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gatepass/internal/ledger/models"
	"gatepass/pkg/domain"
)

// Postgres persists ledger entries in PostgreSQL. The table carries no
// UPDATE or DELETE path besides Clear's truncate.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Append(ctx context.Context, e models.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transaction_log (
			id, ts, plate_number, driver, action, gate, remarks, logged_by, access_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Timestamp, e.PlateNumber, e.Driver, string(e.Action), e.Gate,
		e.Remarks, e.LoggedBy, e.AccessStatus)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, f models.Filter) ([]models.Entry, error) {
	query := `
		SELECT id, ts, plate_number, driver, action, gate, remarks, logged_by, access_status
		FROM transaction_log
	`
	where, args := buildFilter(f)
	query += where + ` ORDER BY ts`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []models.Entry
	for rows.Next() {
		var e models.Entry
		var action string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.PlateNumber, &e.Driver,
			&action, &e.Gate, &e.Remarks, &e.LoggedBy, &e.AccessStatus); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Action = domain.TxAction(action)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Postgres) CountPlateActivity(ctx context.Context, plate string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM transaction_log
		WHERE lower(plate_number) = lower($1) AND ts >= $2
	`, plate, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count plate activity: %w", err)
	}
	return count, nil
}

func (s *Postgres) Summarize(ctx context.Context, f models.Filter) (models.Summary, error) {
	where, args := buildFilter(f)
	rows, err := s.db.QueryContext(ctx, `
		SELECT gate, action, count(*) FROM transaction_log
	`+where+` GROUP BY gate, action`, args...)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summarize ledger: %w", err)
	}
	defer rows.Close()

	sum := models.Summary{PerGate: make(map[string]int)}
	for rows.Next() {
		var gate, action string
		var count int
		if err := rows.Scan(&gate, &action, &count); err != nil {
			return models.Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		switch domain.TxAction(action) {
		case domain.TxActionIn:
			sum.TotalIn += count
		case domain.TxActionOut:
			sum.TotalOut += count
		}
		sum.PerGate[gate] += count
	}
	return sum, rows.Err()
}

func (s *Postgres) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE transaction_log`); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}

func buildFilter(f models.Filter) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.PlateNumber != "" {
		add(`lower(plate_number) = lower($%d)`, f.PlateNumber)
	}
	if f.Gate != "" {
		add(`gate = $%d`, f.Gate)
	}
	if f.Action != "" {
		add(`action = $%d`, string(f.Action))
	}
	if !f.Since.IsZero() {
		add(`ts >= $%d`, f.Since)
	}
	if !f.Until.IsZero() {
		add(`ts <= $%d`, f.Until)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, " AND "), args
}
