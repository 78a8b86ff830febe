package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

type stubGates struct {
	known map[string]bool
	err   error
}

func (s stubGates) Exists(_ context.Context, gateID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.known[gateID], nil
}

func newValidator(gates ...string) *GateAccessValidator {
	known := make(map[string]bool, len(gates))
	for _, g := range gates {
		known[g] = true
	}
	return NewGateAccessValidator(stubGates{known: known})
}

func TestParseAllowedGates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty means unrestricted", "", nil},
		{"whitespace only means unrestricted", "   ", nil},
		{"single gate without separator", "north", []string{"north"}},
		{"comma separated list", "north,south", []string{"north", "south"}},
		{"tokens are trimmed", " north , south ", []string{"north", "south"}},
		{"trailing comma is harmless", "north,", []string{"north"}},
		{"empty tokens are dropped", "north,,south,", []string{"north", "south"}},
		{"lone comma means unrestricted", ",", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAllowedGates(tt.raw))
		})
	}
}

func TestValidateGateSelection(t *testing.T) {
	v := newValidator("north")

	t.Run("empty gate is rejected before lookup", func(t *testing.T) {
		d, err := v.Validate(context.Background(), VehicleGateProfile{AccessStatus: "Access"}, "", domain.TxActionIn)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNoGateSelected, d.Reason)
	})

	t.Run("whitespace gate is rejected before lookup", func(t *testing.T) {
		d, err := v.Validate(context.Background(), VehicleGateProfile{AccessStatus: "Access"}, "   ", domain.TxActionIn)
		require.NoError(t, err)
		assert.Equal(t, ReasonNoGateSelected, d.Reason)
	})

	t.Run("unknown gate is rejected", func(t *testing.T) {
		d, err := v.Validate(context.Background(), VehicleGateProfile{AccessStatus: "Access"}, "west", domain.TxActionIn)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonGateNotFound, d.Reason)
	})

	t.Run("lookup failure surfaces as storage error", func(t *testing.T) {
		broken := NewGateAccessValidator(stubGates{err: errors.New("connection refused")})
		_, err := broken.Validate(context.Background(), VehicleGateProfile{}, "north", domain.TxActionIn)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
	})
}

func TestValidateAccessStatus(t *testing.T) {
	v := newValidator("north")
	ctx := context.Background()

	t.Run("banned denies entry and exit", func(t *testing.T) {
		for _, action := range []domain.TxAction{domain.TxActionIn, domain.TxActionOut} {
			d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "Banned"}, "north", action)
			require.NoError(t, err)
			assert.False(t, d.Allowed)
			assert.Equal(t, ReasonVehicleBanned, d.Reason)
		}
	})

	t.Run("banned ignores one-time pass", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "banned", OneTimePass: true}, "north", domain.TxActionIn)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.False(t, d.ConsumedPass)
	})

	t.Run("no access denies entry without pass", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "No Access"}, "north", domain.TxActionIn)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNoAccess, d.Reason)
	})

	t.Run("no access allows entry with pass and consumes it", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "no access", OneTimePass: true}, "north", domain.TxActionIn)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.True(t, d.ConsumedPass)
	})

	t.Run("no access always allows exit", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "no access"}, "north", domain.TxActionOut)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.False(t, d.ConsumedPass)
	})

	t.Run("exit under no access with pass consumes it", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "no access", OneTimePass: true}, "north", domain.TxActionOut)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.True(t, d.ConsumedPass)
	})

	t.Run("status matching is case and padding insensitive", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "  BANNED  "}, "north", domain.TxActionOut)
		require.NoError(t, err)
		assert.Equal(t, ReasonVehicleBanned, d.Reason)
	})

	t.Run("unrecognized status grants access", func(t *testing.T) {
		// A typo in the status field must never lock a vehicle out.
		for _, status := range []string{"Access", "full acces", "whatever", ""} {
			d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: status}, "north", domain.TxActionIn)
			require.NoError(t, err)
			assert.True(t, d.Allowed, "status %q", status)
			assert.False(t, d.ConsumedPass)
		}
	})
}

func TestValidateAllowList(t *testing.T) {
	v := newValidator("north", "south")
	ctx := context.Background()

	t.Run("empty allow list admits any known gate", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "Access"}, "south", domain.TxActionIn)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, ReasonGranted, d.Reason)
	})

	t.Run("gate outside allow list is rejected", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "Access", AllowedGates: "north"}, "south", domain.TxActionIn)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonGateNotAllowed, d.Reason)
	})

	t.Run("single gate allow list without separator works", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "Access", AllowedGates: "north"}, "north", domain.TxActionIn)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("trailing comma behaves like clean list", func(t *testing.T) {
		forms := []string{"north,south", "north,south,", " north , south "}
		for _, raw := range forms {
			d, err := v.Validate(ctx, VehicleGateProfile{AccessStatus: "Access", AllowedGates: raw}, "south", domain.TxActionIn)
			require.NoError(t, err)
			assert.True(t, d.Allowed, "allow list %q", raw)
		}
	})

	t.Run("allow list still applies when pass grants entry", func(t *testing.T) {
		d, err := v.Validate(ctx, VehicleGateProfile{
			AccessStatus: "no access", OneTimePass: true, AllowedGates: "north",
		}, "south", domain.TxActionIn)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonGateNotAllowed, d.Reason)
	})
}
