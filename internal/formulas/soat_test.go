package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func TestSoatPrice_FlatTypes(t *testing.T) {
	tests := []struct {
		vehicleType string
		want        int64
	}{
		{"CICLOMOTOR", 117900},
		{"MOTO", 355500},
		{"MOTOCARRO", 613700},
		{"BUS", 1217600},
		{"CARGA", 1057700},
		{"SERVICIO PUBLICO", 798900},
	}

	for _, tt := range tests {
		t.Run(tt.vehicleType, func(t *testing.T) {
			assert.Equal(t, tt.want, SoatPrice(tt.vehicleType, nil).IntPart())
			assert.Equal(t, tt.want, SoatPrice(tt.vehicleType, intPtr(3000)).IntPart())
		})
	}
}

func TestSoatPrice_BandedTypes(t *testing.T) {
	tests := []struct {
		name        string
		vehicleType string
		cc          int
		want        int64
	}{
		{"familiar small", "AUTO FAMILIAR", 1200, 445300},
		{"familiar lower edge", "AUTO FAMILIAR", 1500, 542600},
		{"familiar upper edge", "AUTO FAMILIAR", 2500, 542600},
		{"familiar large", "AUTO FAMILIAR", 2501, 633700},
		{"campero small", "CAMPERO", 1499, 797000},
		{"campero mid", "CAMPERO", 2000, 953300},
		{"campero large", "CAMPERO", 4000, 1117900},
		{"camioneta mid", "CAMIONETA", 1800, 953300},
		{"pasajeros small", "SEIS O MAS PASAJEROS", 1000, 798900},
		{"pasajeros mid", "SEIS O MAS PASAJEROS", 2400, 1006000},
		{"pasajeros large", "SEIS O MAS PASAJEROS", 2600, 1315100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SoatPrice(tt.vehicleType, intPtr(tt.cc)).IntPart())
		})
	}
}

func TestSoatPrice_EveryTableEntry(t *testing.T) {
	for vehicleType, entry := range soatTable {
		if entry.banded == nil {
			assert.Equal(t, entry.flat, SoatPrice(vehicleType, nil).IntPart(), vehicleType)
			continue
		}
		samples := map[string]int{
			BracketUnder1500:  1000,
			Bracket1500To2500: 2000,
			BracketOver2500:   3000,
		}
		for bracket, cc := range samples {
			assert.Equal(t, entry.banded[bracket], SoatPrice(vehicleType, intPtr(cc)).IntPart(), vehicleType+" "+bracket)
		}
	}
}

func TestSoatPrice_Unknown(t *testing.T) {
	assert.True(t, SoatPrice("TRACTOR", intPtr(2000)).IsZero())
	assert.True(t, SoatPrice("", nil).IsZero())
}

func TestSoatPrice_BandedWithoutCapacity(t *testing.T) {
	assert.True(t, SoatPrice("AUTO FAMILIAR", nil).IsZero())
	assert.True(t, SoatPrice("CAMPERO", nil).IsZero())
}

func TestSoatPrice_NormalizesType(t *testing.T) {
	assert.Equal(t, int64(445300), SoatPrice("  auto   familiar ", intPtr(1300)).IntPart())
}

func TestSoatVehicleTypes(t *testing.T) {
	types := SoatVehicleTypes()
	assert.Len(t, types, len(soatTable))
	assert.IsNonDecreasing(t, types)
	assert.True(t, IsBanded("camioneta"))
	assert.False(t, IsBanded("MOTO"))
	assert.False(t, IsBanded("NAVE"))
}
