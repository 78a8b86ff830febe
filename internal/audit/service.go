package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gatepass/internal/policy"
)

// Service captures structured before/after diffs for privileged vehicle
// writes. Recording is best-effort: a failed append is logged and swallowed
// so the audit trail can never fail the primary mutation.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record appends an audit entry for the given actor. It is a no-op for any
// role other than admin and super-admin: security-role writes are deliberately
// not audited here (they can only touch the current driver, which the ledger
// already captures).
func (s *Service) Record(ctx context.Context, username string, role policy.Role, action EntryAction, old, updated Snapshot) {
	if role != policy.RoleAdmin && role != policy.RoleSuperAdmin {
		return
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Username:  username,
		Action:    action,
		Old:       old,
		New:       updated,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "audit append failed",
				"username", username,
				"action", string(action),
				"error", err,
			)
		}
	}
}

// List returns audit entries, optionally filtered by username.
func (s *Service) List(ctx context.Context, username string) ([]Entry, error) {
	return s.store.List(ctx, username)
}
