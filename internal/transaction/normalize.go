package transaction

import (
	"context"
	"errors"
	"strings"

	vehiclemodels "gatepass/internal/vehicle/models"
	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
)

// parseAction normalizes and validates the submitted action.
func parseAction(raw string) (domain.TxAction, error) {
	action, err := domain.ParseTxAction(strings.ToUpper(strings.TrimSpace(raw)))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid transaction action")
	}
	return action, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resolveVehicle finds the vehicle a scan refers to. An all-digit value is
// tried as a vehicle ID before a plate: some older records had their plate
// field overwritten with the numeric ID, and ID resolution is what recovers
// them.
func (p *Processor) resolveVehicle(ctx context.Context, plateOrID string) (*vehiclemodels.Vehicle, error) {
	plateOrID = strings.TrimSpace(plateOrID)
	if plateOrID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "plate or vehicle id is required")
	}

	if isNumeric(plateOrID) {
		n := vehiclemodels.NumericID(plateOrID)
		v, err := p.vehicles.FindByID(ctx, vehiclemodels.FormatID(n))
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "vehicle lookup failed")
		}
		// Fall through: a fully numeric plate is unusual but legal.
	}

	v, err := p.vehicles.FindByPlate(ctx, plateOrID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no vehicle matches %q", plateOrID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "vehicle lookup failed")
	}
	return v, nil
}

// resolveDriver repairs the driver field. Some gate clients echo the action
// literal into the driver box; that value is garbage, so it is replaced by
// the vehicle's current driver, then the acting operator, then "Unknown".
func resolveDriver(submitted string, vehicle *vehiclemodels.Vehicle, actingUsername string) string {
	driver := strings.TrimSpace(submitted)
	switch strings.ToUpper(driver) {
	case "", string(domain.TxActionIn), string(domain.TxActionOut):
		driver = strings.TrimSpace(vehicle.CurrentDriver)
		if driver == "" {
			driver = strings.TrimSpace(actingUsername)
		}
		if driver == "" {
			driver = "Unknown"
		}
	}
	return driver
}
