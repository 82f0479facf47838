package formulas

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Cylinder brackets of the SOAT table.
const (
	BracketUnder1500  = "<1500"
	Bracket1500To2500 = "1500-2500"
	BracketOver2500   = ">2500"
)

type soatEntry struct {
	flat   int64
	banded map[string]int64
}

// soatTable holds the yearly SOAT tariffs in COP. Banded types need a
// cylinder capacity, flat types ignore it.
var soatTable = map[string]soatEntry{
	"CICLOMOTOR":       {flat: 117900},
	"MOTO":             {flat: 355500},
	"MOTOCARRO":        {flat: 613700},
	"BUS":              {flat: 1217600},
	"CARGA":            {flat: 1057700},
	"SERVICIO PUBLICO": {flat: 798900},
	"AUTO FAMILIAR": {banded: map[string]int64{
		BracketUnder1500:  445300,
		Bracket1500To2500: 542600,
		BracketOver2500:   633700,
	}},
	"CAMPERO": {banded: map[string]int64{
		BracketUnder1500:  797000,
		Bracket1500To2500: 953300,
		BracketOver2500:   1117900,
	}},
	"CAMIONETA": {banded: map[string]int64{
		BracketUnder1500:  797000,
		Bracket1500To2500: 953300,
		BracketOver2500:   1117900,
	}},
	"SEIS O MAS PASAJEROS": {banded: map[string]int64{
		BracketUnder1500:  798900,
		Bracket1500To2500: 1006000,
		BracketOver2500:   1315100,
	}},
}

// CylinderBracket maps an engine displacement to its table bracket.
func CylinderBracket(cc int) string {
	switch {
	case cc < 1500:
		return BracketUnder1500
	case cc <= 2500:
		return Bracket1500To2500
	default:
		return BracketOver2500
	}
}

func normalizeVehicleType(vehicleType string) string {
	return strings.ToUpper(strings.Join(strings.Fields(vehicleType), " "))
}

// SoatPrice returns the SOAT price for a vehicle type and cylinder capacity.
// Unknown types, and banded types without a capacity, return zero.
func SoatPrice(vehicleType string, cylinderCapacity *int) decimal.Decimal {
	entry, ok := soatTable[normalizeVehicleType(vehicleType)]
	if !ok {
		return decimal.Zero
	}
	if entry.banded == nil {
		return decimal.NewFromInt(entry.flat)
	}
	if cylinderCapacity == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(entry.banded[CylinderBracket(*cylinderCapacity)])
}

// IsBanded reports whether the vehicle type needs a cylinder capacity.
func IsBanded(vehicleType string) bool {
	entry, ok := soatTable[normalizeVehicleType(vehicleType)]
	return ok && entry.banded != nil
}

// SoatVehicleTypes lists the vehicle types in the table, sorted.
func SoatVehicleTypes() []string {
	types := make([]string, 0, len(soatTable))
	for k := range soatTable {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
