package services

import (
	"context"
	"sync"

	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

type mockLedgerStore struct {
	ListTransactionsFunc       func(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error)
	GetTransactionsByIDsFunc   func(ctx context.Context, ids []string) ([]models.Transaction, error)
	GetTransactionFunc         func(ctx context.Context, id string) (models.Transaction, error)
	CreateTransactionFunc      func(ctx context.Context, t models.Transaction) (models.Transaction, error)
	SaveTransactionsFunc       func(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error)
	UpdateTransactionMoneyFunc func(ctx context.Context, txns []models.Transaction) error
	DeleteTransactionsFunc     func(ctx context.Context, ids []string) (int64, error)
}

func (m *mockLedgerStore) ListTransactions(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error) {
	return m.ListTransactionsFunc(ctx, arg)
}

func (m *mockLedgerStore) GetTransactionsByIDs(ctx context.Context, ids []string) ([]models.Transaction, error) {
	return m.GetTransactionsByIDsFunc(ctx, ids)
}

func (m *mockLedgerStore) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	return m.GetTransactionFunc(ctx, id)
}

func (m *mockLedgerStore) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	return m.CreateTransactionFunc(ctx, t)
}

func (m *mockLedgerStore) SaveTransactions(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error) {
	return m.SaveTransactionsFunc(ctx, txns)
}

func (m *mockLedgerStore) UpdateTransactionMoney(ctx context.Context, txns []models.Transaction) error {
	return m.UpdateTransactionMoneyFunc(ctx, txns)
}

func (m *mockLedgerStore) DeleteTransactions(ctx context.Context, ids []string) (int64, error) {
	return m.DeleteTransactionsFunc(ctx, ids)
}

type mockCuadreStore struct {
	ListCuadreFunc    func(ctx context.Context, transactionIDs []string) (map[string]models.CuadreData, error)
	UpsertCuadreFunc  func(ctx context.Context, c models.CuadreData) (models.CuadreData, error)
	UpsertCuadresFunc func(ctx context.Context, records []models.CuadreData) ([]models.CuadreData, error)
	DeleteCuadresFunc func(ctx context.Context, transactionIDs []string) (int64, error)
}

func (m *mockCuadreStore) ListCuadre(ctx context.Context, transactionIDs []string) (map[string]models.CuadreData, error) {
	return m.ListCuadreFunc(ctx, transactionIDs)
}

func (m *mockCuadreStore) UpsertCuadre(ctx context.Context, c models.CuadreData) (models.CuadreData, error) {
	return m.UpsertCuadreFunc(ctx, c)
}

func (m *mockCuadreStore) UpsertCuadres(ctx context.Context, records []models.CuadreData) ([]models.CuadreData, error) {
	return m.UpsertCuadresFunc(ctx, records)
}

func (m *mockCuadreStore) DeleteCuadres(ctx context.Context, transactionIDs []string) (int64, error) {
	return m.DeleteCuadresFunc(ctx, transactionIDs)
}

type mockLister struct {
	ListFunc func(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error)
}

func (m *mockLister) List(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error) {
	return m.ListFunc(ctx, arg)
}

type publishedEvent struct {
	Type string
	Data any
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType string, data any) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Data: data})
	return 1
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
