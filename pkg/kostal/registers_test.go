package kostal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSpotChecks(t *testing.T) {
	// addresses and types straight from the vendor's Modbus map
	for _, tc := range []struct {
		name string
		addr uint16
		typ  RegisterType
	}{
		{"Inverter article number", 6, String8},
		{"Inverter State", 56, U16},
		{"Total DC power", 100, Float32},
		{"Voltage DC1", 266, Float32},
		{"Battery actual SOC", 514, U16},
		{"Inverter Generation Power (actual)", 575, S16},
		{"Generation Energy", 577, U32},
		{"Productname", 768, String32},
		{"Battery charge power (DC) setpoint, absolute", 1034, Float32},
		{"Installed sensor type", 1082, U8},
	} {
		reg, err := ByName(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.addr, reg.Addr, tc.name)
		assert.Equal(t, tc.typ, reg.Type, tc.name)
	}
}

func TestRegisterTypeCount(t *testing.T) {
	assert.Equal(t, uint16(1), U8.Count())
	assert.Equal(t, uint16(1), U16.Count())
	assert.Equal(t, uint16(1), S16.Count())
	assert.Equal(t, uint16(2), U32.Count())
	assert.Equal(t, uint16(2), Float32.Count())
	assert.Equal(t, uint16(8), String8.Count())
	assert.Equal(t, uint16(32), String32.Count())
}

func TestUnknownRegister(t *testing.T) {
	_, err := ByName("Flux capacitor charge")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRegister)
	assert.Contains(t, err.Error(), "Flux capacitor charge")

	_, err = ByAddress(9999)
	assert.ErrorIs(t, err, ErrUnknownRegister)
}

func TestByAddress(t *testing.T) {
	reg, err := ByAddress(575)
	require.NoError(t, err)
	assert.Equal(t, "Inverter Generation Power (actual)", reg.Name)
}

func TestCatalogUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool, len(Catalog))
	last := -1
	for _, reg := range Catalog {
		assert.False(t, seen[reg.Name], "duplicate name %q", reg.Name)
		seen[reg.Name] = true
		assert.Greater(t, int(reg.Addr), last, "catalog must be address-ordered")
		last = int(reg.Addr)
	}
}

func TestOnlySetpointBlockWritable(t *testing.T) {
	for _, reg := range Catalog {
		if reg.Writable {
			assert.GreaterOrEqual(t, reg.Addr, uint16(1028), "%s", reg.Name)
			assert.LessOrEqual(t, reg.Addr, uint16(1044), "%s", reg.Name)
		}
	}
}
