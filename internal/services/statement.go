package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/timeutil"
	"github.com/xuri/excelize/v2"
)

// BankUnknown is returned by DetectBank for unrecognised headers.
const BankUnknown = "UNKNOWN"

var (
	ErrEmptyStatement = errors.New("empty statement")
	ErrUnknownBank    = errors.New("unknown bank format")
)

// StatementParser reads bank statement exports into deposits.
type StatementParser struct {
	schemas map[string]models.BankSchema
	log     zerolog.Logger
}

// NewStatementParser creates a parser with the supported bank layouts.
func NewStatementParser(log zerolog.Logger) *StatementParser {
	return &StatementParser{
		schemas: map[string]models.BankSchema{
			"Bancolombia": {
				Bank:              "Bancolombia",
				DateColumn:        "fecha",
				DescriptionColumn: "descripcion",
				ReferenceColumn:   "dcto.",
				AmountColumn:      "valor",
			},
			"Davivienda": {
				Bank:              "Davivienda",
				DateColumn:        "fecha de sistema",
				DescriptionColumn: "descripcion motivo",
				ReferenceColumn:   "referencia 1",
				AmountColumn:      "valor total",
				TypeColumn:        "transaccion",
			},
			"Nequi": {
				Bank:              "Nequi",
				DateColumn:        "fecha del movimiento",
				DescriptionColumn: "descripcion",
				AmountColumn:      "valor",
			},
			"BBVA": {
				Bank:               "BBVA",
				DateColumn:         "fecha",
				DescriptionColumn:  "concepto",
				ReferenceColumn:    "referencia",
				DebitColumn:        "cargos",
				CreditColumn:       "abonos",
				HasSeparateAmounts: true,
			},
		},
		log: log.With().Str("component", "statement").Logger(),
	}
}

var headerReplacer = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return headerReplacer.Replace(strings.ToLower(strings.TrimSpace(h)))
}

// DetectBank identifies the bank from the header row.
func DetectBank(headers []string) string {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[normalizeHeader(h)] = true
	}

	switch {
	case set["fecha de sistema"] && set["valor total"]:
		return "Davivienda"
	case set["fecha del movimiento"]:
		return "Nequi"
	case set["cargos"] && set["abonos"]:
		return "BBVA"
	case set["fecha"] && set["valor"] && (set["dcto."] || set["sucursal"]):
		return "Bancolombia"
	}
	return BankUnknown
}

// ParseStatementDate parses the date formats seen in Colombian exports as a
// Bogota calendar day.
func ParseStatementDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		"02/01/2006",
		"2006-01-02",
		"2006/01/02",
		"20060102",
		"02-01-2006",
		"2/1/2006",
		"02/01/06",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, timeutil.Bogota); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// ParseCSV reads a comma or semicolon separated export.
func (p *StatementParser) ParseCSV(r io.Reader) (*models.Statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return p.parseRecords(records)
}

// ParseXLSX reads the first sheet of a workbook export.
func (p *StatementParser) ParseXLSX(r io.Reader) (*models.Statement, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyStatement
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return p.parseRecords(records)
}

// Parse dispatches on the detected file type ("CSV" or "XLSX").
func (p *StatementParser) Parse(r io.Reader, fileType string) (*models.Statement, error) {
	switch fileType {
	case FileTypeXLSX:
		return p.ParseXLSX(r)
	case FileTypeCSV:
		return p.ParseCSV(r)
	default:
		return nil, fmt.Errorf("unsupported statement type %q", fileType)
	}
}

// detectDelimiter compares separator counts over the start of the file,
// since exports may open with a title line.
func detectDelimiter(data []byte) rune {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	if bytes.Count(sample, []byte{';'}) > bytes.Count(sample, []byte{','}) {
		return ';'
	}
	return ','
}

// parseRecords finds the header row (exports often start with a title
// block), detects the bank and converts the remaining rows.
func (p *StatementParser) parseRecords(records [][]string) (*models.Statement, error) {
	headerRow := -1
	bank := BankUnknown
	for i, rec := range records {
		if b := DetectBank(rec); b != BankUnknown {
			headerRow, bank = i, b
			break
		}
	}
	if headerRow == -1 {
		if len(records) == 0 {
			return nil, ErrEmptyStatement
		}
		return nil, ErrUnknownBank
	}

	schema := p.schemas[bank]
	index := make(map[string]int, len(records[headerRow]))
	for i, h := range records[headerRow] {
		index[normalizeHeader(h)] = i
	}

	stmt := &models.Statement{Bank: bank, Deposits: []models.Deposit{}}
	for n, row := range records[headerRow+1:] {
		if isEmptyRow(row) || isSummaryRow(row) {
			continue
		}
		dep, ok, err := parseRow(row, index, schema)
		if err != nil {
			p.log.Warn().Err(err).Int("row", headerRow+n+2).Msg("skipping statement row")
			stmt.Skipped++
			continue
		}
		if ok {
			stmt.Deposits = append(stmt.Deposits, dep)
		}
	}
	return stmt, nil
}

// parseRow converts one row. ok is false for debits.
func parseRow(row []string, index map[string]int, schema models.BankSchema) (models.Deposit, bool, error) {
	cell := func(column string) string {
		i, found := index[column]
		if !found || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	dep := models.Deposit{Banco: schema.Bank}
	fecha, err := ParseStatementDate(cell(schema.DateColumn))
	if err != nil {
		return dep, false, err
	}
	dep.Fecha = fecha
	dep.Descripcion = cell(schema.DescriptionColumn)
	if schema.ReferenceColumn != "" {
		dep.Referencia = cell(schema.ReferenceColumn)
	}

	if schema.HasSeparateAmounts {
		credit, err := models.ParseAmount(cell(schema.CreditColumn))
		if err != nil {
			return dep, false, err
		}
		dep.Monto = credit
		return dep, credit.IsPositive(), nil
	}

	amount, err := models.ParseAmount(cell(schema.AmountColumn))
	if err != nil {
		return dep, false, err
	}
	if schema.TypeColumn != "" {
		kind := normalizeHeader(cell(schema.TypeColumn))
		if strings.Contains(kind, "debito") {
			return dep, false, nil
		}
		amount = amount.Abs()
	}
	dep.Monto = amount
	return dep, amount.IsPositive(), nil
}

func isEmptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func isSummaryRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := normalizeHeader(row[0])
	for _, keyword := range []string{"total", "saldo anterior", "saldo final", "saldo inicial"} {
		if strings.Contains(first, keyword) {
			return true
		}
	}
	return false
}

func sameDay(t models.Transaction, d models.Deposit) bool {
	return timeutil.DateKey(t.Fecha) == timeutil.DateKey(d.Fecha)
}
