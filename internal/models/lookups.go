package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asesor is an advisor that sells procedures.
type Asesor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Color is a named tag color used by dropdown options.
type Color struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hex       string    `json:"hex"`
	CreatedAt time.Time `json:"createdAt"`
}

// NamedOption is the shape shared by tramites, emitidoPor and novedades.
type NamedOption struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// BoletaPayment records a payment of registered boletas.
type BoletaPayment struct {
	ID            string          `json:"id"`
	Fecha         time.Time       `json:"fecha"`
	Monto         decimal.Decimal `json:"monto"`
	Boletas       int             `json:"boletas"`
	Referencia    *string         `json:"referencia"`
	Observaciones *string         `json:"observaciones"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// OptionWithColor is a NamedOption with its color resolved to a hex value.
type OptionWithColor struct {
	NamedOption
	Hex *string `json:"hex"`
}
