package audit

import "time"

// EntryAction distinguishes what kind of privileged write produced the entry.
type EntryAction string

const (
	ActionCreate EntryAction = "create"
	ActionUpdate EntryAction = "update"
)

// Snapshot is a flattened field-by-field representation of a record, keyed by
// field name. Diffs over two snapshots stay human-readable, unlike raw rows.
type Snapshot map[string]string

// Entry records one privileged vehicle write: who did it, what kind of write
// it was, and the record state before and after. Old is nil for creates.
type Entry struct {
	ID        string
	Timestamp time.Time
	Username  string
	Action    EntryAction
	Old       Snapshot
	New       Snapshot
}
