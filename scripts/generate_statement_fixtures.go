// Command generate_statement_fixtures writes sample bank statements in the
// layouts the cuadre import understands, as both CSV and XLSX.
//
//	go run ./scripts -out testdata/statements
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tramitesplus/cuadre-api/internal/logger"
	"github.com/xuri/excelize/v2"
)

type fixture struct {
	name    string
	comma   rune
	title   []string
	headers []string
	rows    [][]interface{}
}

var fixtures = []fixture{
	{
		name:    "bancolombia",
		comma:   ',',
		title:   []string{"EXTRACTO CUENTA DE AHORROS", "MOVIMIENTOS DEL MES"},
		headers: []string{"FECHA", "DESCRIPCIÓN", "SUCURSAL", "DCTO.", "VALOR", "SALDO"},
		rows: [][]interface{}{
			{"03/03/2025", "TRANSFERENCIA DESDE NEQUI", "BOGOTA", "000123", 280000, 1280000},
			{"03/03/2025", "PAGO PSE IMPUESTOS", "BOGOTA", "000124", -54000, 1226000},
			{"04/03/2025", "CONSIGNACION CORRESPONSAL", "CHAPINERO", "000125", 455300, 1681300},
		},
	},
	{
		name:    "davivienda",
		comma:   ';',
		headers: []string{"Fecha de Sistema", "Transacción", "Descripción motivo", "Referencia 1", "Valor Total"},
		rows: [][]interface{}{
			{"2025-03-03", "Nota Crédito", "ABONO TRANSFERENCIA", "REF-88", "355500"},
			{"2025-03-03", "Nota Débito", "COMISION", "REF-89", "-9500"},
		},
	},
	{
		name:    "nequi",
		comma:   ',',
		headers: []string{"Fecha del movimiento", "Descripción", "Valor"},
		rows: [][]interface{}{
			{"04/03/2025", "Recibiste de ANA PEREZ", "$ 117.900"},
			{"04/03/2025", "Enviaste a LUIS GOMEZ", "-$ 20.000"},
		},
	},
	{
		name:    "bbva",
		comma:   ';',
		headers: []string{"Fecha", "Concepto", "Referencia", "Cargos", "Abonos"},
		rows: [][]interface{}{
			{"05/03/2025", "ABONO TRANSFERENCIA ACH", "7781", "", "613700"},
			{"05/03/2025", "CUOTA MANEJO", "7782", "12000", ""},
		},
	},
}

func main() {
	out := flag.String("out", filepath.Join("testdata", "statements"), "output directory")
	flag.Parse()

	log := logger.New("development", "info")

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create output directory")
	}

	for _, fx := range fixtures {
		csvPath := filepath.Join(*out, fx.name+".csv")
		if err := writeCSV(csvPath, fx); err != nil {
			log.Fatal().Err(err).Str("fixture", fx.name).Msg("failed to write csv")
		}
		xlsxPath := filepath.Join(*out, fx.name+".xlsx")
		if err := writeXLSX(xlsxPath, fx); err != nil {
			log.Fatal().Err(err).Str("fixture", fx.name).Msg("failed to write xlsx")
		}
		log.Info().Str("csv", csvPath).Str("xlsx", xlsxPath).Msg("generated fixture")
	}
}

func writeCSV(path string, fx fixture) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = fx.comma
	for _, line := range fx.title {
		if err := w.Write([]string{line}); err != nil {
			return err
		}
	}
	if err := w.Write(fx.headers); err != nil {
		return err
	}
	for _, row := range fx.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string, fx fixture) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := strings.ToUpper(fx.name[:1]) + fx.name[1:]
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	row := 1
	for _, line := range fx.title {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), line); err != nil {
			return err
		}
		row++
	}

	headers := make([]interface{}, len(fx.headers))
	for i, h := range fx.headers {
		headers[i] = h
	}
	for _, values := range append([][]interface{}{headers}, fx.rows...) {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
	}
	return f.SaveAs(path)
}
