package domain

import "fmt"

// TxAction is the direction of a gate transaction. It doubles as the vehicle
// status: a vehicle's status is the action of its most recent transaction.
//
// Usage: construct via ParseTxAction at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type TxAction string

const (
	TxActionIn  TxAction = "IN"
	TxActionOut TxAction = "OUT"
)

// ParseTxAction validates and returns a TxAction.
func ParseTxAction(s string) (TxAction, error) {
	switch TxAction(s) {
	case TxActionIn, TxActionOut:
		return TxAction(s), nil
	}
	return "", fmt.Errorf("unknown transaction action: %q", s)
}

// String returns the string representation of the action.
func (a TxAction) String() string {
	return string(a)
}
