package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/formulas"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

// cuadreTolerance is the largest difference still considered reconciled.
var cuadreTolerance = decimal.NewFromInt(1)

// CuadreStore persists reconciliation records.
type CuadreStore interface {
	ListCuadre(ctx context.Context, transactionIDs []string) (map[string]models.CuadreData, error)
	UpsertCuadre(ctx context.Context, c models.CuadreData) (models.CuadreData, error)
	UpsertCuadres(ctx context.Context, records []models.CuadreData) ([]models.CuadreData, error)
	DeleteCuadres(ctx context.Context, transactionIDs []string) (int64, error)
}

// TransactionLister returns the ledger rows of a date range.
type TransactionLister interface {
	List(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error)
}

// CuadreService joins ledger rows with their bank reconciliation records.
type CuadreService struct {
	ledger TransactionLister
	store  CuadreStore
	events Publisher
	log    zerolog.Logger
}

func NewCuadreService(ledger TransactionLister, store CuadreStore, events Publisher, log zerolog.Logger) *CuadreService {
	return &CuadreService{
		ledger: ledger,
		store:  store,
		events: events,
		log:    log.With().Str("component", "cuadre").Logger(),
	}
}

// TotalCobrado is what the customer was charged: the adjusted net price plus
// the service fee.
func TotalCobrado(t models.Transaction) decimal.Decimal {
	res := formulas.Calculate(t.FormulaInput())
	return res.PrecioNetoAjustado.Add(t.TarifaServicio).Round(2)
}

// BuildCuadreRow computes the reconciliation fields of one transaction.
func BuildCuadreRow(t models.Transaction, c *models.CuadreData) models.CuadreRow {
	row := models.CuadreRow{
		Transaction:  t,
		Cuadre:       c,
		TotalCobrado: TotalCobrado(t),
		Estado:       models.EstadoPendiente,
	}
	if c == nil || c.Monto.IsZero() {
		return row
	}

	row.Diferencia = c.Monto.Sub(row.TotalCobrado)
	if row.Diferencia.Abs().LessThan(cuadreTolerance) {
		row.Estado = models.EstadoCuadrado
	} else {
		row.Estado = models.EstadoDiferencia
	}
	return row
}

// List returns the cuadre view of a date range.
func (s *CuadreService) List(ctx context.Context, arg db.ListTransactionsParams) ([]models.CuadreRow, error) {
	txns, err := s.ledger.List(ctx, arg)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(txns))
	for i, t := range txns {
		ids[i] = t.ID
	}
	records, err := s.store.ListCuadre(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]models.CuadreRow, 0, len(txns))
	for _, t := range txns {
		var c *models.CuadreData
		if rec, ok := records[t.ID]; ok {
			c = &rec
		}
		rows = append(rows, BuildCuadreRow(t, c))
	}
	return rows, nil
}

// Upsert stores the reconciliation record of one transaction.
func (s *CuadreService) Upsert(ctx context.Context, c models.CuadreData) (models.CuadreData, error) {
	if _, err := uuid.Parse(c.TransactionID); err != nil {
		return models.CuadreData{}, fmt.Errorf("%w: transactionId %q", ErrInvalidEdit, c.TransactionID)
	}
	c.Monto = c.Monto.Round(2)

	saved, err := s.store.UpsertCuadre(ctx, c)
	if err != nil {
		return models.CuadreData{}, err
	}
	s.events.Publish(EventCuadreUpdated, []models.CuadreData{saved})
	return saved, nil
}

// UpsertMany stores several records in one batch.
func (s *CuadreService) UpsertMany(ctx context.Context, records []models.CuadreData) ([]models.CuadreData, error) {
	for i := range records {
		if _, err := uuid.Parse(records[i].TransactionID); err != nil {
			return nil, fmt.Errorf("%w: transactionId %q", ErrInvalidEdit, records[i].TransactionID)
		}
		records[i].Monto = records[i].Monto.Round(2)
	}

	saved, err := s.store.UpsertCuadres(ctx, records)
	if err != nil {
		return nil, err
	}
	if len(saved) > 0 {
		s.events.Publish(EventCuadreUpdated, saved)
	}
	return saved, nil
}

// Delete removes the reconciliation records of the given transactions.
func (s *CuadreService) Delete(ctx context.Context, transactionIDs []string) (int64, error) {
	deleted, err := s.store.DeleteCuadres(ctx, transactionIDs)
	if err != nil {
		return 0, err
	}
	s.events.Publish(EventCuadreUpdated, map[string]any{"deleted": transactionIDs})
	return deleted, nil
}

// ImportResult reports how a bank statement was applied.
type ImportResult struct {
	Bank      string              `json:"bank"`
	Deposits  int                 `json:"deposits"`
	Matched   []models.CuadreData `json:"matched"`
	Unmatched []models.Deposit    `json:"unmatched"`
}

// Import matches statement deposits to pending rows of the range and stores
// a cuadre record for every match.
func (s *CuadreService) Import(ctx context.Context, arg db.ListTransactionsParams, stmt *models.Statement) (ImportResult, error) {
	rows, err := s.List(ctx, arg)
	if err != nil {
		return ImportResult{}, err
	}

	matched, unmatched := MatchDeposits(rows, stmt.Deposits)
	result := ImportResult{
		Bank:      stmt.Bank,
		Deposits:  len(stmt.Deposits),
		Unmatched: unmatched,
		Matched:   []models.CuadreData{},
	}
	if len(matched) == 0 {
		return result, nil
	}

	saved, err := s.UpsertMany(ctx, matched)
	if err != nil {
		return ImportResult{}, err
	}
	result.Matched = saved

	s.log.Info().
		Str("bank", stmt.Bank).
		Int("deposits", len(stmt.Deposits)).
		Int("matched", len(saved)).
		Msg("imported bank statement")
	return result, nil
}

// MatchDeposits pairs each credit with at most one pending row whose total
// matches within tolerance, preferring a row from the same Bogota day. Rows
// that already carry a monto are never touched.
func MatchDeposits(rows []models.CuadreRow, deposits []models.Deposit) ([]models.CuadreData, []models.Deposit) {
	used := make(map[string]bool, len(rows))
	var matched []models.CuadreData
	unmatched := []models.Deposit{}

	for _, d := range deposits {
		best := -1
		for i, row := range rows {
			if used[row.Transaction.ID] || row.Estado != models.EstadoPendiente {
				continue
			}
			if row.TotalCobrado.Sub(d.Monto).Abs().GreaterThanOrEqual(cuadreTolerance) {
				continue
			}
			if best == -1 {
				best = i
			}
			if sameDay(row.Transaction, d) {
				best = i
				break
			}
		}
		if best == -1 {
			unmatched = append(unmatched, d)
			continue
		}

		row := rows[best]
		used[row.Transaction.ID] = true
		fecha := d.Fecha
		rec := models.CuadreData{
			TransactionID: row.Transaction.ID,
			Banco:         d.Banco,
			Monto:         d.Monto,
			Pagado:        true,
			FechaCliente:  &fecha,
			Referencia:    d.Referencia,
		}
		if row.Cuadre != nil {
			rec.ID = row.Cuadre.ID
			rec.Banco2 = row.Cuadre.Banco2
			if rec.Referencia == "" {
				rec.Referencia = row.Cuadre.Referencia
			}
		}
		matched = append(matched, rec)
	}
	return matched, unmatched
}
