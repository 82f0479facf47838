package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/timeutil"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Report kinds, used in storage keys and file names.
const (
	ReportLedger = "ledger"
	ReportCuadre = "cuadre"
)

const pesoFormat = `"$"#,##0.00`

var ledgerHeaders = []string{
	"Fecha", "Trámite", "Pagado", "Boleta", "Boletas registradas", "Emitido por",
	"Placa", "Tipo documento", "Número documento", "Nombre", "Cilindraje",
	"Tipo vehículo", "Celular", "Ciudad", "Asesor", "Novedad", "Precio neto",
	"Tarifa servicio", "4x1000", "Ganancia bruta", "Comisión extra", "Rappi",
	"Observaciones", "Banco", "Referencia",
}

var cuadreHeaders = []string{
	"Fecha", "Placa", "Nombre", "Trámite", "Asesor", "Total cobrado", "Banco",
	"Banco 2", "Monto", "Diferencia", "Estado", "Fecha cliente", "Referencia",
}

// ledgerMoneyColumns are the 1-based columns of ledgerHeaders holding money.
var ledgerMoneyColumns = []int{17, 18, 19, 20}

// workbook wraps an excelize file with the shared header and money styles.
type workbook struct {
	f           *excelize.File
	headerStyle int
	moneyStyle  int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: stringPtr(pesoFormat)})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}
	return &workbook{f: f, headerStyle: header, moneyStyle: money}, nil
}

func stringPtr(s string) *string { return &s }

// sheet renames the default sheet on first use and creates later ones.
func (w *workbook) sheet(name string, headers []string) error {
	if w.f.SheetCount == 1 && w.f.GetSheetName(0) == "Sheet1" {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}

	if err := w.f.SetSheetRow(name, "A1", &headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := w.f.SetCellStyle(name, "A1", last, w.headerStyle); err != nil {
		return err
	}
	return w.f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (w *workbook) row(sheet string, n int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

func (w *workbook) moneyColumns(sheet string, cols []int, rows int) error {
	if rows < 2 {
		return nil
	}
	for _, col := range cols {
		top, _ := excelize.CoordinatesToCellName(col, 2)
		bottom, _ := excelize.CoordinatesToCellName(col, rows)
		if err := w.f.SetCellStyle(sheet, top, bottom, w.moneyStyle); err != nil {
			return err
		}
	}
	return nil
}

func (w *workbook) bytes() ([]byte, error) {
	defer w.f.Close()
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func siNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// LedgerWorkbook renders transactions plus a per-day summary sheet.
func LedgerWorkbook(txns []models.Transaction) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	const sheet = "Transacciones"
	if err := w.sheet(sheet, ledgerHeaders); err != nil {
		w.f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	for i, t := range txns {
		var cilindraje interface{}
		if t.Cilindraje != nil {
			cilindraje = *t.Cilindraje
		}
		values := []interface{}{
			timeutil.FormatDisplay(t.Fecha), t.Tramite, siNo(t.Pagado), siNo(t.Boleta),
			money(t.BoletasRegistradas), t.EmitidoPor, t.Placa, t.TipoDocumento,
			t.NumeroDocumento, t.Nombre, cilindraje, deref(t.TipoVehiculo),
			deref(t.Celular), deref(t.Ciudad), t.Asesor, deref(t.Novedad),
			money(t.PrecioNeto), money(t.TarifaServicio), money(t.Impuesto4x1000),
			money(t.GananciaBruta), siNo(t.ComisionExtra), siNo(t.Rappi),
			deref(t.Observaciones), deref(t.Banco), deref(t.Referencia),
		}
		if err := w.row(sheet, i+2, values); err != nil {
			w.f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := w.moneyColumns(sheet, ledgerMoneyColumns, len(txns)+1); err != nil {
		w.f.Close()
		return nil, err
	}

	if err := w.summarySheet(Summarize(txns)); err != nil {
		w.f.Close()
		return nil, err
	}
	return w.bytes()
}

func (w *workbook) summarySheet(s Summary) error {
	const sheet = "Resumen"
	headers := []string{"Fecha", "Trámites", "Precio neto", "Tarifa servicio", "4x1000", "Ganancia bruta", "Pagados", "No pagados"}
	if err := w.sheet(sheet, headers); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	write := func(n int, label string, t Totals) error {
		return w.row(sheet, n, []interface{}{
			label, t.Count, money(t.PrecioNeto), money(t.TarifaServicio),
			money(t.Impuesto4x1000), money(t.GananciaBruta), t.Pagados, t.NoPagados,
		})
	}
	for i, d := range s.Days {
		if err := write(i+2, d.Fecha, d.Totals); err != nil {
			return err
		}
	}
	last := len(s.Days) + 2
	if err := write(last, "Total", s.Total); err != nil {
		return err
	}
	return w.moneyColumns(sheet, []int{3, 4, 5, 6}, last)
}

// CuadreWorkbook renders the reconciliation view.
func CuadreWorkbook(rows []models.CuadreRow) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	const sheet = "Cuadre"
	if err := w.sheet(sheet, cuadreHeaders); err != nil {
		w.f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	for i, r := range rows {
		t := r.Transaction
		values := []interface{}{
			timeutil.FormatDisplay(t.Fecha), t.Placa, t.Nombre, t.Tramite, t.Asesor,
			money(r.TotalCobrado), "", "", nil, nil, r.Estado, "", "",
		}
		if c := r.Cuadre; c != nil {
			values[6], values[7], values[12] = c.Banco, c.Banco2, c.Referencia
			if !c.Monto.IsZero() {
				values[8], values[9] = money(c.Monto), money(r.Diferencia)
			}
			if c.FechaCliente != nil {
				values[11] = timeutil.DateKey(*c.FechaCliente)
			}
		}
		if err := w.row(sheet, i+2, values); err != nil {
			w.f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := w.moneyColumns(sheet, []int{6, 9, 10}, len(rows)+1); err != nil {
		w.f.Close()
		return nil, err
	}
	return w.bytes()
}

// ReportName is the download file name of a report over a key range.
func ReportName(kind, fromKey, toKey string) string {
	switch {
	case fromKey != "" && toKey != "":
		return fmt.Sprintf("%s_%s_%s", kind, fromKey, toKey)
	case fromKey != "":
		return fmt.Sprintf("%s_desde_%s", kind, fromKey)
	case toKey != "":
		return fmt.Sprintf("%s_hasta_%s", kind, toKey)
	}
	return kind
}

// ReportLink points at an uploaded report.
type ReportLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReportStore uploads report bytes and signs download links.
type ReportStore interface {
	GenerateReportKey(kind, name string) (string, error)
	Upload(ctx context.Context, key, contentType string, data []byte) error
	PresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ReportPublisher uploads workbooks and hands back a temporary link. A nil
// store means storage is not configured.
type ReportPublisher struct {
	store  ReportStore
	expiry time.Duration
	log    zerolog.Logger
}

func NewReportPublisher(store ReportStore, log zerolog.Logger) *ReportPublisher {
	return &ReportPublisher{
		store:  store,
		expiry: DefaultDownloadExpiry,
		log:    log.With().Str("component", "reports").Logger(),
	}
}

// Enabled reports whether uploads are possible.
func (p *ReportPublisher) Enabled() bool {
	return p != nil && p.store != nil
}

// Publish uploads an XLSX report and returns its download link.
func (p *ReportPublisher) Publish(ctx context.Context, kind, name string, data []byte) (ReportLink, error) {
	if !p.Enabled() {
		return ReportLink{}, ErrStorageDisabled
	}

	key, err := p.store.GenerateReportKey(kind, name)
	if err != nil {
		return ReportLink{}, err
	}
	if err := p.store.Upload(ctx, key, XLSXContentType, data); err != nil {
		return ReportLink{}, err
	}
	url, err := p.store.PresignedDownloadURL(ctx, key, p.expiry)
	if err != nil {
		return ReportLink{}, err
	}

	p.log.Info().Str("key", key).Int("bytes", len(data)).Msg("uploaded report")
	return ReportLink{Key: key, URL: url, ExpiresAt: time.Now().Add(p.expiry)}, nil
}
