package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reconciliation states of a cuadre row.
const (
	EstadoPendiente  = "PENDIENTE"
	EstadoCuadrado   = "CUADRADO"
	EstadoDiferencia = "DIFERENCIA"
)

// CuadreData is the reconciliation record of one transaction.
type CuadreData struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	Banco         string          `json:"banco"`
	Banco2        string          `json:"banco2"`
	Monto         decimal.Decimal `json:"monto"`
	Pagado        bool            `json:"pagado"`
	FechaCliente  *time.Time      `json:"fechaCliente"`
	Referencia    string          `json:"referencia"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// CuadreRow is a transaction joined with its reconciliation record.
type CuadreRow struct {
	Transaction  Transaction     `json:"transaction"`
	Cuadre       *CuadreData     `json:"cuadre"`
	TotalCobrado decimal.Decimal `json:"totalCobrado"`
	Diferencia   decimal.Decimal `json:"diferencia"`
	Estado       string          `json:"estado"`
}
