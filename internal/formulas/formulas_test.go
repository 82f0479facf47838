package formulas

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate_RappiScenario(t *testing.T) {
	res := Calculate(Input{
		PrecioNeto:     dec("100000"),
		TarifaServicio: dec("20000"),
		ComisionExtra:  false,
		Rappi:          true,
	})

	assert.True(t, dec("100000").Equal(res.PrecioNetoAjustado), "ajustado = %s", res.PrecioNetoAjustado)
	assert.True(t, dec("-400").Equal(res.Impuesto4x1000), "impuesto = %s", res.Impuesto4x1000)
	assert.True(t, dec("1000").Equal(res.RappiComision), "rappi = %s", res.RappiComision)
	assert.True(t, dec("20600").Equal(res.GananciaBruta), "ganancia = %s", res.GananciaBruta)
}

func TestCalculate_ComisionExtra(t *testing.T) {
	res := Calculate(Input{
		PrecioNeto:     dec("445300"),
		TarifaServicio: dec("35000"),
		ComisionExtra:  true,
	})

	// (445300 + 30000) * -0.004 = -1901.2
	assert.True(t, dec("475300").Equal(res.PrecioNetoAjustado))
	assert.True(t, dec("-1901.2").Equal(res.Impuesto4x1000))
	assert.True(t, decimal.Zero.Equal(res.RappiComision))
	assert.True(t, dec("33098.8").Equal(res.GananciaBruta))
}

func TestCalculate_RappiUsesUnadjustedPrice(t *testing.T) {
	res := Calculate(Input{
		PrecioNeto:     dec("200000"),
		TarifaServicio: dec("10000"),
		ComisionExtra:  true,
		Rappi:          true,
	})

	assert.True(t, dec("2000").Equal(res.RappiComision))
	assert.True(t, dec("-920").Equal(res.Impuesto4x1000))
	assert.True(t, dec("11080").Equal(res.GananciaBruta))
}

func TestCalculate_Properties(t *testing.T) {
	prices := []string{"0", "1", "99999.99", "117900", "1315100", "2500000"}
	tarifas := []string{"0", "15000", "42000.5"}

	for _, p := range prices {
		for _, tf := range tarifas {
			for _, comision := range []bool{false, true} {
				for _, rappi := range []bool{false, true} {
					in := Input{PrecioNeto: dec(p), TarifaServicio: dec(tf), ComisionExtra: comision, Rappi: rappi}
					res := Calculate(in)

					base := dec(p)
					if comision {
						base = base.Add(dec("30000"))
					}
					wantImpuesto := base.Mul(dec("-0.004"))
					assert.True(t, wantImpuesto.Equal(res.Impuesto4x1000), "impuesto for %+v", in)

					wantRappi := decimal.Zero
					if rappi {
						wantRappi = dec(p).Mul(dec("0.01"))
					}
					wantGanancia := dec(tf).Add(wantImpuesto).Add(wantRappi)
					assert.True(t, wantGanancia.Equal(res.GananciaBruta), "ganancia for %+v", in)
				}
			}
		}
	}
}

func TestResult_Round(t *testing.T) {
	res := Calculate(Input{PrecioNeto: dec("123456.789"), TarifaServicio: dec("1000")}).Round()
	assert.Equal(t, "-493.83", res.Impuesto4x1000.StringFixed(2))
	assert.Equal(t, "506.17", res.GananciaBruta.StringFixed(2))
}
