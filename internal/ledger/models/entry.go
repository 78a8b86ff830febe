package models

import (
	"time"

	"gatepass/pkg/domain"
)

// Entry is one recorded gate transaction. Entries are immutable once written;
// insertion order is chronological order.
type Entry struct {
	ID          string
	Timestamp   time.Time
	PlateNumber string
	Driver      string
	Action      domain.TxAction
	Gate        string
	Remarks     string
	LoggedBy    string
	// AccessStatus is the raw vehicle access status observed when the
	// transaction was evaluated, preserved for the audit trail.
	AccessStatus string
}

// Filter narrows ledger listings. Zero values mean "no constraint".
type Filter struct {
	PlateNumber string
	Gate        string
	Action      domain.TxAction
	Since       time.Time
	Until       time.Time
	Limit       int
}

// Summary aggregates ledger activity for the statistics view.
type Summary struct {
	TotalIn  int
	TotalOut int
	PerGate  map[string]int
}
