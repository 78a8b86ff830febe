package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists audit entries in PostgreSQL with JSONB snapshots.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	var oldJSON []byte
	if e.Old != nil {
		b, err := json.Marshal(e.Old)
		if err != nil {
			return fmt.Errorf("marshal old snapshot: %w", err)
		}
		oldJSON = b
	}
	newJSON, err := json.Marshal(e.New)
	if err != nil {
		return fmt.Errorf("marshal new snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_trail (id, ts, username, action, old_data, new_data)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Timestamp, e.Username, string(e.Action), oldJSON, newJSON)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, username string) ([]Entry, error) {
	query := `SELECT id, ts, username, action, old_data, new_data FROM audit_trail`
	var args []any
	if username != "" {
		query += ` WHERE username = $1`
		args = append(args, username)
	}
	query += ` ORDER BY ts`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var action string
		var oldJSON, newJSON []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Username, &action, &oldJSON, &newJSON); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = EntryAction(action)
		if len(oldJSON) > 0 {
			if err := json.Unmarshal(oldJSON, &e.Old); err != nil {
				return nil, fmt.Errorf("unmarshal old snapshot: %w", err)
			}
		}
		if err := json.Unmarshal(newJSON, &e.New); err != nil {
			return nil, fmt.Errorf("unmarshal new snapshot: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
