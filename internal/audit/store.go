package audit

import "context"

// Store is the audit trail's persistence port. Append-only; entries are never
// rewritten.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, username string) ([]Entry, error)
}
