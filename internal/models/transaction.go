package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tramitesplus/cuadre-api/internal/formulas"
)

// Transaction is one row of the daily ledger.
type Transaction struct {
	ID                 string          `json:"id"`
	Fecha              time.Time       `json:"fecha"`
	Tramite            string          `json:"tramite"`
	Pagado             bool            `json:"pagado"`
	Boleta             bool            `json:"boleta"`
	BoletasRegistradas decimal.Decimal `json:"boletasRegistradas"`
	EmitidoPor         string          `json:"emitidoPor"`
	Placa              string          `json:"placa"`
	TipoDocumento      string          `json:"tipoDocumento"`
	NumeroDocumento    string          `json:"numeroDocumento"`
	Nombre             string          `json:"nombre"`
	Cilindraje         *int            `json:"cilindraje"`
	TipoVehiculo       *string         `json:"tipoVehiculo"`
	Celular            *string         `json:"celular"`
	Ciudad             *string         `json:"ciudad"`
	Asesor             string          `json:"asesor"`
	Novedad            *string         `json:"novedad"`
	PrecioNeto         decimal.Decimal `json:"precioNeto"`
	TarifaServicio     decimal.Decimal `json:"tarifaServicio"`
	Impuesto4x1000     decimal.Decimal `json:"impuesto4x1000"`
	GananciaBruta      decimal.Decimal `json:"gananciaBruta"`
	ComisionExtra      bool            `json:"comisionExtra"`
	Rappi              bool            `json:"rappi"`
	Observaciones      *string         `json:"observaciones"`
	Banco              *string         `json:"banco"`
	Referencia         *string         `json:"referencia"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// FormulaInput extracts the stored values the formulas depend on.
func (t *Transaction) FormulaInput() formulas.Input {
	return formulas.Input{
		PrecioNeto:     t.PrecioNeto,
		TarifaServicio: t.TarifaServicio,
		ComisionExtra:  t.ComisionExtra,
		Rappi:          t.Rappi,
	}
}

// ApplyFormulas overwrites the derived money fields with formula output.
// It reports whether any stored value changed.
func (t *Transaction) ApplyFormulas() bool {
	res := formulas.Calculate(t.FormulaInput()).Round()
	changed := !t.Impuesto4x1000.Equal(res.Impuesto4x1000) || !t.GananciaBruta.Equal(res.GananciaBruta)
	t.Impuesto4x1000 = res.Impuesto4x1000
	t.GananciaBruta = res.GananciaBruta
	return changed
}

// ApplySoatPrice sets precioNeto from the SOAT table when the vehicle data
// yields a price. It reports whether a price was applied.
func (t *Transaction) ApplySoatPrice() bool {
	if t.TipoVehiculo == nil {
		return false
	}
	price := formulas.SoatPrice(*t.TipoVehiculo, t.Cilindraje)
	if price.IsZero() {
		return false
	}
	t.PrecioNeto = price
	return true
}
