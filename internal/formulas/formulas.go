// Package formulas computes the derived money fields of a transaction and
// looks up SOAT prices.
package formulas

import "github.com/shopspring/decimal"

var (
	// ComisionExtraAmount is added to precioNeto when comisionExtra is set.
	ComisionExtraAmount = decimal.NewFromInt(30000)
	// Impuesto4x1000Rate is the 4x1000 tax, applied as a negative adjustment.
	Impuesto4x1000Rate = decimal.RequireFromString("-0.004")
	// RappiRate is the share of precioNeto credited for rappi orders.
	RappiRate = decimal.RequireFromString("0.01")
)

// Input holds the stored values the formulas read.
type Input struct {
	PrecioNeto     decimal.Decimal
	TarifaServicio decimal.Decimal
	ComisionExtra  bool
	Rappi          bool
}

// Result holds the derived values. Amounts are exact; callers that persist
// them round to currency precision.
type Result struct {
	PrecioNetoAjustado decimal.Decimal `json:"precioNetoAjustado"`
	Impuesto4x1000     decimal.Decimal `json:"impuesto4x1000"`
	RappiComision      decimal.Decimal `json:"rappiComision"`
	GananciaBruta      decimal.Decimal `json:"gananciaBruta"`
}

// Calculate applies the ledger formulas to in.
func Calculate(in Input) Result {
	ajustado := in.PrecioNeto
	if in.ComisionExtra {
		ajustado = ajustado.Add(ComisionExtraAmount)
	}

	impuesto := ajustado.Mul(Impuesto4x1000Rate)

	rappi := decimal.Zero
	if in.Rappi {
		rappi = in.PrecioNeto.Mul(RappiRate)
	}

	return Result{
		PrecioNetoAjustado: ajustado,
		Impuesto4x1000:     impuesto,
		RappiComision:      rappi,
		GananciaBruta:      in.TarifaServicio.Add(impuesto).Add(rappi),
	}
}

// Round returns r with every amount rounded to two decimals.
func (r Result) Round() Result {
	return Result{
		PrecioNetoAjustado: r.PrecioNetoAjustado.Round(2),
		Impuesto4x1000:     r.Impuesto4x1000.Round(2),
		RappiComision:      r.RappiComision.Round(2),
		GananciaBruta:      r.GananciaBruta.Round(2),
	}
}
