package transaction

import (
	ledgermodels "gatepass/internal/ledger/models"
	vehiclemodels "gatepass/internal/vehicle/models"
)

// Request is one gate transaction as submitted from a gate station.
// PlateOrID is resolved leniently: an all-digit value is treated as a vehicle
// ID first, which recovers records whose plate field was overwritten by an ID.
type Request struct {
	PlateOrID string
	Action    string
	GateID    string
	Driver    string
	Remarks   string
}

// Result is a committed transaction: the ledger entry that was written and
// the vehicle state after the commit.
type Result struct {
	Entry   ledgermodels.Entry
	Vehicle *vehiclemodels.Vehicle
}
