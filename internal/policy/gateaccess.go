package policy

import (
	"context"
	"strings"

	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// Access status values recognized after normalization. Any other value,
// typos like "full acces" included, is treated as unrestricted Access.
// That leniency is deliberate: a mistyped status must never lock a vehicle
// out, so only the two restrictive spellings are matched.
const (
	AccessStatusBanned   = "banned"
	AccessStatusNoAccess = "no access"
)

// Gate-access denial reasons. These are stable strings surfaced to operators
// and attached to GateAccessDenied errors as machine-readable metadata.
const (
	ReasonNoGateSelected = "no gate selected"
	ReasonGateNotFound   = "gate not found"
	ReasonVehicleBanned  = "vehicle banned"
	ReasonNoAccess       = "no access"
	ReasonGateNotAllowed = "gate not in allowed list"
	ReasonGranted        = "access granted"
)

// NormalizeAccessStatus lowercases and trims a raw access status so the
// restrictive values match regardless of casing and padding in the stored
// record.
func NormalizeAccessStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseAllowedGates turns the serialized allow-list into gate ID tokens.
// Empty input means no restriction. A value with no separator is a valid
// one-element list; it must behave identically to a comma-separated list, so
// empty tokens are filtered after splitting either way (this also makes
// trailing separators harmless).
func ParseAllowedGates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	gates := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			gates = append(gates, p)
		}
	}
	return gates
}

// VehicleGateProfile is the slice of vehicle state the validator needs. The
// raw strings are passed through untouched so normalization happens in exactly
// one place.
type VehicleGateProfile struct {
	AccessStatus string
	AllowedGates string
	OneTimePass  bool
}

// GateDecision is the outcome of a gate-access check. ConsumedPass reports
// that the one-time pass was spent by this decision; the caller clears the
// flag when (and only when) the transaction commits.
type GateDecision struct {
	Allowed      bool
	Reason       string
	ConsumedPass bool
}

// GateLookup answers gate existence checks. Presence in the allow-list is
// evaluated against vehicle data, not gate data; existence is the only thing
// the validator asks of the gate repository.
type GateLookup interface {
	Exists(ctx context.Context, gateID string) (bool, error)
}

// GateAccessValidator decides whether a vehicle may transact at a gate.
type GateAccessValidator struct {
	gates GateLookup
}

func NewGateAccessValidator(gates GateLookup) *GateAccessValidator {
	return &GateAccessValidator{gates: gates}
}

// Validate applies the gate-access rules in order: gate selected, gate
// exists, access status, allow-list. The returned error is non-nil only when
// the gate lookup itself fails; every policy denial comes back as a
// GateDecision with Allowed=false and a distinguishable Reason.
func (v *GateAccessValidator) Validate(ctx context.Context, vehicle VehicleGateProfile, gateID string, action domain.TxAction) (GateDecision, error) {
	gateID = strings.TrimSpace(gateID)
	if gateID == "" {
		return GateDecision{Reason: ReasonNoGateSelected}, nil
	}

	exists, err := v.gates.Exists(ctx, gateID)
	if err != nil {
		return GateDecision{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "gate lookup failed")
	}
	if !exists {
		return GateDecision{Reason: ReasonGateNotFound}, nil
	}

	consumed := false
	switch NormalizeAccessStatus(vehicle.AccessStatus) {
	case AccessStatusBanned:
		// Banned wins over everything, including the one-time pass and the
		// gate allow-list.
		return GateDecision{Reason: ReasonVehicleBanned}, nil
	case AccessStatusNoAccess:
		if action == domain.TxActionIn && !vehicle.OneTimePass {
			return GateDecision{Reason: ReasonNoAccess}, nil
		}
		// Exit is always allowed under "no access". The pass is spent by
		// whichever transaction (IN or OUT) goes through while it is set.
		consumed = vehicle.OneTimePass
	}

	allowed := ParseAllowedGates(vehicle.AllowedGates)
	if len(allowed) > 0 && !containsGate(allowed, gateID) {
		return GateDecision{Reason: ReasonGateNotAllowed}, nil
	}

	return GateDecision{Allowed: true, Reason: ReasonGranted, ConsumedPass: consumed}, nil
}

func containsGate(gates []string, gateID string) bool {
	for _, g := range gates {
		if g == gateID {
			return true
		}
	}
	return false
}
