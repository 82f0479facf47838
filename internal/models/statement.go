package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankSchema describes the column layout of one bank's statement export.
type BankSchema struct {
	Bank              string
	DateColumn        string
	DescriptionColumn string
	ReferenceColumn   string
	// Single signed amount column, optionally with a debit/credit indicator.
	AmountColumn string
	TypeColumn   string
	// Separate columns for money out and money in.
	DebitColumn        string
	CreditColumn       string
	HasSeparateAmounts bool
}

// Deposit is one incoming payment read from a bank statement.
type Deposit struct {
	Fecha       time.Time       `json:"fecha"`
	Descripcion string          `json:"descripcion"`
	Referencia  string          `json:"referencia"`
	Monto       decimal.Decimal `json:"monto"`
	Banco       string          `json:"banco"`
}

// Statement is a parsed bank statement. Only credits are kept.
type Statement struct {
	Bank     string    `json:"bank"`
	Deposits []Deposit `json:"deposits"`
	Skipped  int       `json:"skipped"`
}
