package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tramitesplus/cuadre-api/internal/autosave"
	"github.com/tramitesplus/cuadre-api/internal/database"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

// ErrInvalidEdit is returned for edits naming an unknown row or field.
var ErrInvalidEdit = errors.New("invalid edit")

// LedgerStore is the persistence the ledger needs.
type LedgerStore interface {
	ListTransactions(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error)
	GetTransactionsByIDs(ctx context.Context, ids []string) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	SaveTransactions(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error)
	UpdateTransactionMoney(ctx context.Context, txns []models.Transaction) error
	DeleteTransactions(ctx context.Context, ids []string) (int64, error)
}

// Publisher pushes change events to connected clients.
type Publisher interface {
	Publish(eventType string, data any) int
}

// Ledger owns the transaction lifecycle: formulas on every write, the
// debounced edit buffer and change events.
type Ledger struct {
	store  LedgerStore
	events Publisher
	edits  *autosave.Buffer
	log    zerolog.Logger

	retryAttempts int
	retryDelay    time.Duration
	now           func() time.Time
}

// NewLedger creates a ledger whose cell edits are saved autosaveDelay after
// the last one.
func NewLedger(store LedgerStore, events Publisher, autosaveDelay time.Duration, log zerolog.Logger) *Ledger {
	l := &Ledger{
		store:         store,
		events:        events,
		log:           log.With().Str("component", "ledger").Logger(),
		retryAttempts: database.DefaultRetryAttempts,
		retryDelay:    database.DefaultRetryDelay,
		now:           time.Now,
	}
	l.edits = autosave.NewBuffer(autosaveDelay, l.saveEdits, log)
	return l
}

// List returns transactions with retained edits overlaid.
func (l *Ledger) List(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error) {
	txns, err := database.WithRetry(ctx, l.retryAttempts, l.retryDelay, func(ctx context.Context) ([]models.Transaction, error) {
		return l.store.ListTransactions(ctx, arg)
	})
	if err != nil {
		return nil, err
	}

	confirmed := make(map[string]autosave.Matcher, len(txns))
	for i := range txns {
		confirmed[txns[i].ID] = &txns[i]
	}
	l.edits.Confirm(confirmed)

	for i := range txns {
		l.overlay(&txns[i])
	}
	return txns, nil
}

// Get returns one transaction with its retained edits overlaid.
func (l *Ledger) Get(ctx context.Context, id string) (models.Transaction, error) {
	t, err := database.WithRetry(ctx, l.retryAttempts, l.retryDelay, func(ctx context.Context) (models.Transaction, error) {
		t, err := l.store.GetTransaction(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			return t, database.Permanent(err)
		}
		return t, err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	l.edits.Confirm(map[string]autosave.Matcher{t.ID: &t})
	l.overlay(&t)
	return t, nil
}

// overlay renders a row the way it will be saved: retained edits applied,
// dependent fields derived and money fields recomputed.
func (l *Ledger) overlay(t *models.Transaction) {
	patch, ok := l.edits.Overlay(t.ID)
	if !ok {
		return
	}
	if err := applyPatch(t, patch); err != nil {
		l.log.Warn().Err(err).Str("id", t.ID).Msg("failed to overlay retained edits")
	}
	deriveDependentFields(t, patch)
	t.ApplyFormulas()
}

// Create stores a new transaction. Missing id and fecha are filled in, the
// SOAT price is used when precioNeto is empty, and formulas are applied.
func (l *Ledger) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Fecha.IsZero() {
		t.Fecha = l.now()
	}
	if t.PrecioNeto.IsZero() {
		t.ApplySoatPrice()
	}
	t.ApplyFormulas()

	created, err := l.store.CreateTransaction(ctx, t)
	if err != nil {
		return models.Transaction{}, err
	}
	l.events.Publish(EventTransactionCreated, created)
	return created, nil
}

// SaveAll persists full records, recomputing derived fields first. The
// records replace any retained edits of the same rows.
func (l *Ledger) SaveAll(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error) {
	ids := make([]string, 0, len(txns))
	for i := range txns {
		if txns[i].ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrInvalidEdit, i)
		}
		if txns[i].Fecha.IsZero() {
			txns[i].Fecha = l.now()
		}
		txns[i].ApplyFormulas()
		ids = append(ids, txns[i].ID)
	}

	saved, err := l.store.SaveTransactions(ctx, txns)
	if err != nil {
		return nil, err
	}
	l.edits.Discard(ids...)
	if len(saved) > 0 {
		l.events.Publish(EventTransactionUpdated, saved)
	}
	return saved, nil
}

// Delete removes transactions and forgets their retained edits.
func (l *Ledger) Delete(ctx context.Context, ids []string) (int64, error) {
	deleted, err := l.store.DeleteTransactions(ctx, ids)
	if err != nil {
		return 0, err
	}
	l.edits.Discard(ids...)
	l.events.Publish(EventTransactionDeleted, ids)
	return deleted, nil
}

// ApplyEdits validates cell edits and hands them to the debounce buffer.
func (l *Ledger) ApplyEdits(edits []autosave.Edit) error {
	for _, e := range edits {
		if _, err := uuid.Parse(e.RowID); err != nil {
			return fmt.Errorf("%w: row id %q", ErrInvalidEdit, e.RowID)
		}
		if !models.IsEditableField(e.Field) {
			return fmt.Errorf("%w: field %q is not editable", ErrInvalidEdit, e.Field)
		}
		probe := models.Transaction{}
		if err := probe.Set(e.Field, e.Value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEdit, err)
		}
	}
	l.edits.Apply(edits...)
	return nil
}

// FlushEdits saves buffered edits now.
func (l *Ledger) FlushEdits(ctx context.Context) error {
	return l.edits.Flush(ctx)
}

// EditStatus reports retained edits and row states.
func (l *Ledger) EditStatus() autosave.Status {
	return l.edits.Status()
}

// Close flushes buffered edits and stops the debounce timer.
func (l *Ledger) Close(ctx context.Context) error {
	return l.edits.Close(ctx)
}

// saveEdits is the autosave SaveFunc: it loads the edited rows, applies the
// merged patches, derives dependent fields and writes every row in one batch.
func (l *Ledger) saveEdits(ctx context.Context, patches map[string]autosave.Patch) (map[string]autosave.Matcher, error) {
	ids := make([]string, 0, len(patches))
	for id := range patches {
		ids = append(ids, id)
	}

	current, err := l.store.GetTransactionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load edited rows: %w", err)
	}

	for i := range current {
		t := &current[i]
		patch := patches[t.ID]
		if err := applyPatch(t, patch); err != nil {
			return nil, err
		}
		deriveDependentFields(t, patch)
		t.ApplyFormulas()
	}

	saved, err := l.store.SaveTransactions(ctx, current)
	if err != nil {
		return nil, err
	}

	out := make(map[string]autosave.Matcher, len(saved))
	for i := range saved {
		out[saved[i].ID] = &saved[i]
	}
	if len(saved) > 0 {
		l.events.Publish(EventTransactionUpdated, saved)
	}
	l.log.Info().Int("rows", len(saved)).Msg("saved buffered edits")
	return out, nil
}

func applyPatch(t *models.Transaction, patch autosave.Patch) error {
	for field, value := range patch {
		if err := t.Set(field, value); err != nil {
			return fmt.Errorf("row %s: %w", t.ID, err)
		}
	}
	return nil
}

// deriveDependentFields recomputes precioNeto from the SOAT table when the
// vehicle type or cylinder capacity changed, unless the same patch sets
// precioNeto explicitly.
func deriveDependentFields(t *models.Transaction, patch autosave.Patch) {
	_, vehicle := patch["tipoVehiculo"]
	_, cc := patch["cilindraje"]
	_, price := patch["precioNeto"]
	if (vehicle || cc) && !price {
		t.ApplySoatPrice()
	}
}

// Recalculate overwrites stored money fields that drifted from the formulas
// and returns how many rows changed.
func (l *Ledger) Recalculate(ctx context.Context) (int, error) {
	txns, err := l.store.ListTransactions(ctx, db.ListTransactionsParams{})
	if err != nil {
		return 0, err
	}

	var changed []models.Transaction
	for _, t := range txns {
		if t.ApplyFormulas() {
			changed = append(changed, t)
		}
	}
	if err := l.store.UpdateTransactionMoney(ctx, changed); err != nil {
		return 0, err
	}
	if len(changed) > 0 {
		l.log.Info().Int("rows", len(changed)).Msg("recalculated money fields")
		l.events.Publish(EventTransactionUpdated, changed)
	}
	return len(changed), nil
}

// RunRecalculation calls Recalculate every interval until ctx is done.
func (l *Ledger) RunRecalculation(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := l.Recalculate(ctx); err != nil {
				l.log.Error().Err(err).Msg("periodic recalculation failed")
			}
		}
	}
}

// Filter narrows an in-memory list the way the grid's search box does: a
// case-insensitive match on placa, nombre, documento or asesor.
func Filter(txns []models.Transaction, query string) []models.Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return txns
	}
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		for _, field := range []string{t.Placa, t.Nombre, t.NumeroDocumento, t.Asesor} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
