package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
	"github.com/tramitesplus/cuadre-api/internal/autosave"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/services"
)

const (
	rowA = "6f1c1f1e-3a54-4c1b-9d8a-2f7e0b1a0001"
	rowB = "6f1c1f1e-3a54-4c1b-9d8a-2f7e0b1a0002"
)

// MockLedger is a mock implementation of Ledger for testing
type MockLedger struct {
	ListFunc        func(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error)
	GetFunc         func(ctx context.Context, id string) (models.Transaction, error)
	CreateFunc      func(ctx context.Context, t models.Transaction) (models.Transaction, error)
	SaveAllFunc     func(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error)
	DeleteFunc      func(ctx context.Context, ids []string) (int64, error)
	ApplyEditsFunc  func(edits []autosave.Edit) error
	FlushEditsFunc  func(ctx context.Context) error
	RecalculateFunc func(ctx context.Context) (int, error)
	Status          autosave.Status
}

func (m *MockLedger) List(ctx context.Context, arg db.ListTransactionsParams) ([]models.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, arg)
	}
	return []models.Transaction{}, nil
}

func (m *MockLedger) Get(ctx context.Context, id string) (models.Transaction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return models.Transaction{}, db.ErrNotFound
}

func (m *MockLedger) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return t, nil
}

func (m *MockLedger) SaveAll(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error) {
	if m.SaveAllFunc != nil {
		return m.SaveAllFunc(ctx, txns)
	}
	return txns, nil
}

func (m *MockLedger) Delete(ctx context.Context, ids []string) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ids)
	}
	return int64(len(ids)), nil
}

func (m *MockLedger) ApplyEdits(edits []autosave.Edit) error {
	if m.ApplyEditsFunc != nil {
		return m.ApplyEditsFunc(edits)
	}
	return nil
}

func (m *MockLedger) FlushEdits(ctx context.Context) error {
	if m.FlushEditsFunc != nil {
		return m.FlushEditsFunc(ctx)
	}
	return nil
}

func (m *MockLedger) EditStatus() autosave.Status {
	return m.Status
}

func (m *MockLedger) Recalculate(ctx context.Context) (int, error) {
	if m.RecalculateFunc != nil {
		return m.RecalculateFunc(ctx)
	}
	return 0, nil
}

// MockCuadre is a mock implementation of Cuadre for testing
type MockCuadre struct {
	ListFunc       func(ctx context.Context, arg db.ListTransactionsParams) ([]models.CuadreRow, error)
	UpsertFunc     func(ctx context.Context, c models.CuadreData) (models.CuadreData, error)
	UpsertManyFunc func(ctx context.Context, records []models.CuadreData) ([]models.CuadreData, error)
	DeleteFunc     func(ctx context.Context, transactionIDs []string) (int64, error)
	ImportFunc     func(ctx context.Context, arg db.ListTransactionsParams, stmt *models.Statement) (services.ImportResult, error)
}

func (m *MockCuadre) List(ctx context.Context, arg db.ListTransactionsParams) ([]models.CuadreRow, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, arg)
	}
	return []models.CuadreRow{}, nil
}

func (m *MockCuadre) Upsert(ctx context.Context, c models.CuadreData) (models.CuadreData, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, c)
	}
	return c, nil
}

func (m *MockCuadre) UpsertMany(ctx context.Context, records []models.CuadreData) ([]models.CuadreData, error) {
	if m.UpsertManyFunc != nil {
		return m.UpsertManyFunc(ctx, records)
	}
	return records, nil
}

func (m *MockCuadre) Delete(ctx context.Context, transactionIDs []string) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, transactionIDs)
	}
	return int64(len(transactionIDs)), nil
}

func (m *MockCuadre) Import(ctx context.Context, arg db.ListTransactionsParams, stmt *models.Statement) (services.ImportResult, error) {
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, arg, stmt)
	}
	return services.ImportResult{Bank: stmt.Bank, Deposits: len(stmt.Deposits)}, nil
}

// MockParser is a mock implementation of StatementParser for testing
type MockParser struct {
	ParseFunc func(r io.Reader, fileType string) (*models.Statement, error)
}

func (m *MockParser) Parse(r io.Reader, fileType string) (*models.Statement, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(r, fileType)
	}
	return nil, fmt.Errorf("parse failed")
}

// MockArchive is a mock implementation of StatementArchive for testing
type MockArchive struct {
	UploadFunc func(ctx context.Context, key, contentType string, data []byte) error
	Keys       []string
}

func (m *MockArchive) GenerateStatementKey(bank, filename string) (string, error) {
	return fmt.Sprintf("statements/%s/%s", bank, filename), nil
}

func (m *MockArchive) Upload(ctx context.Context, key, contentType string, data []byte) error {
	m.Keys = append(m.Keys, key)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, contentType, data)
	}
	return nil
}

// MockReports is a mock implementation of Reports for testing
type MockReports struct {
	Disabled    bool
	PublishFunc func(ctx context.Context, kind, name string, data []byte) (services.ReportLink, error)
}

func (m *MockReports) Enabled() bool {
	return !m.Disabled
}

func (m *MockReports) Publish(ctx context.Context, kind, name string, data []byte) (services.ReportLink, error) {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, kind, name, data)
	}
	return services.ReportLink{Key: "reports/" + kind + "/" + name + ".xlsx", URL: "https://s3.example.com/" + name}, nil
}

// MockLookups is a mock implementation of Lookups for testing
type MockLookups struct {
	ListAsesoresFunc   func(ctx context.Context) ([]models.Asesor, error)
	CreateAsesorFunc   func(ctx context.Context, name string) (models.Asesor, error)
	DeleteAsesorFunc   func(ctx context.Context, id string) error
	ListColoresFunc    func(ctx context.Context) ([]models.Color, error)
	CreateColorFunc    func(ctx context.Context, name, hex string) (models.Color, error)
	ListOptionsFunc    func(ctx context.Context, kind db.OptionKind) ([]models.NamedOption, error)
	CreateOptionFunc   func(ctx context.Context, kind db.OptionKind, nombre string, color *string) (models.NamedOption, error)
	DeleteOptionFunc   func(ctx context.Context, kind db.OptionKind, id string) error
	EmitidoPor         []models.OptionWithColor
}

func (m *MockLookups) ListAsesores(ctx context.Context) ([]models.Asesor, error) {
	if m.ListAsesoresFunc != nil {
		return m.ListAsesoresFunc(ctx)
	}
	return []models.Asesor{}, nil
}

func (m *MockLookups) CreateAsesor(ctx context.Context, name string) (models.Asesor, error) {
	if m.CreateAsesorFunc != nil {
		return m.CreateAsesorFunc(ctx, name)
	}
	return models.Asesor{ID: rowA, Name: name}, nil
}

func (m *MockLookups) DeleteAsesor(ctx context.Context, id string) error {
	if m.DeleteAsesorFunc != nil {
		return m.DeleteAsesorFunc(ctx, id)
	}
	return nil
}

func (m *MockLookups) ListColores(ctx context.Context) ([]models.Color, error) {
	if m.ListColoresFunc != nil {
		return m.ListColoresFunc(ctx)
	}
	return []models.Color{}, nil
}

func (m *MockLookups) CreateColor(ctx context.Context, name, hex string) (models.Color, error) {
	if m.CreateColorFunc != nil {
		return m.CreateColorFunc(ctx, name, hex)
	}
	return models.Color{ID: rowA, Name: name, Hex: hex}, nil
}

func (m *MockLookups) DeleteColor(ctx context.Context, id string) error {
	return nil
}

func (m *MockLookups) ListOptions(ctx context.Context, kind db.OptionKind) ([]models.NamedOption, error) {
	if m.ListOptionsFunc != nil {
		return m.ListOptionsFunc(ctx, kind)
	}
	return []models.NamedOption{}, nil
}

func (m *MockLookups) ListEmitidoPorWithColors(ctx context.Context) ([]models.OptionWithColor, error) {
	return m.EmitidoPor, nil
}

func (m *MockLookups) CreateOption(ctx context.Context, kind db.OptionKind, nombre string, color *string) (models.NamedOption, error) {
	if m.CreateOptionFunc != nil {
		return m.CreateOptionFunc(ctx, kind, nombre, color)
	}
	return models.NamedOption{ID: rowA, Nombre: nombre, Color: color}, nil
}

func (m *MockLookups) DeleteOption(ctx context.Context, kind db.OptionKind, id string) error {
	if m.DeleteOptionFunc != nil {
		return m.DeleteOptionFunc(ctx, kind, id)
	}
	return nil
}

// MockBoletas is a mock implementation of Boletas for testing
type MockBoletas struct {
	ListFunc   func(ctx context.Context) ([]models.BoletaPayment, error)
	CreateFunc func(ctx context.Context, p models.BoletaPayment) (models.BoletaPayment, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockBoletas) List(ctx context.Context) ([]models.BoletaPayment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.BoletaPayment{}, nil
}

func (m *MockBoletas) Create(ctx context.Context, p models.BoletaPayment) (models.BoletaPayment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	p.ID = rowA
	return p, nil
}

func (m *MockBoletas) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// doJSON sends a request with an optional JSON body and decodes the response.
func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp, result
}
