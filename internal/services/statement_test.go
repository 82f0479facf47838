package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectBank(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{"Bancolombia", []string{"FECHA", "DESCRIPCIÓN", "SUCURSAL", "DCTO.", "VALOR", "SALDO"}, "Bancolombia"},
		{"Davivienda", []string{"Fecha de Sistema", "Documento", "Descripción Motivo", "Transacción", "Oficina de Recaudo", "Referencia 1", "Valor Total"}, "Davivienda"},
		{"Nequi", []string{"Fecha del movimiento", "Descripción", "Valor", "Saldo"}, "Nequi"},
		{"BBVA", []string{"Fecha", "Concepto", "Referencia", "Cargos", "Abonos", "Saldo"}, "BBVA"},
		{"unknown", []string{"Random", "Headers"}, BankUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBank(tt.headers))
		})
	}
}

func TestParseStatementDate(t *testing.T) {
	for _, s := range []string{"15/01/2024", "2024-01-15", "2024/01/15", "20240115", "15-01-2024"} {
		d, err := ParseStatementDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, time.January, d.Month())
		assert.Equal(t, 15, d.Day())
		_, offset := d.Zone()
		assert.Equal(t, -5*60*60, offset)
	}

	_, err := ParseStatementDate("ayer")
	assert.Error(t, err)
}

func TestParseCSV_Bancolombia(t *testing.T) {
	csv := strings.Join([]string{
		"Extracto de cuenta de ahorros",
		"",
		"FECHA;DESCRIPCIÓN;SUCURSAL;DCTO.;VALOR;SALDO",
		"15/01/2024;TRANSFERENCIA DESDE NEQUI;;00123;120,000.00;1,120,000.00",
		"15/01/2024;PAGO PSE SOAT;;00124;-355,500.00;764,500.00",
		"16/01/2024;CONSIGNACION CORRESPONSAL;;00125;50.000;814,500.00",
		"mañana;FILA ROTA;;;1;1",
		"TOTAL;;;;;",
	}, "\n")

	stmt, err := NewStatementParser(zerolog.Nop()).ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "Bancolombia", stmt.Bank)
	assert.Equal(t, 1, stmt.Skipped)
	require.Len(t, stmt.Deposits, 2, "debits are dropped")
	assert.True(t, dec("120000").Equal(stmt.Deposits[0].Monto))
	assert.Equal(t, "00123", stmt.Deposits[0].Referencia)
	assert.Equal(t, "TRANSFERENCIA DESDE NEQUI", stmt.Deposits[0].Descripcion)
	assert.Equal(t, "Bancolombia", stmt.Deposits[0].Banco)
	assert.True(t, dec("50000").Equal(stmt.Deposits[1].Monto))
}

func TestParseCSV_DaviviendaTypeColumn(t *testing.T) {
	csv := strings.Join([]string{
		"Fecha de Sistema,Descripción Motivo,Transacción,Referencia 1,Valor Total",
		`2024/01/15,Abono transferencia,Nota Crédito,REF9,"$ 200,000.00"`,
		`2024/01/15,Compra,Nota Débito,REF10,"$ 15,000.00"`,
	}, "\n")

	stmt, err := NewStatementParser(zerolog.Nop()).ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Deposits, 1)
	assert.True(t, dec("200000").Equal(stmt.Deposits[0].Monto))
	assert.Equal(t, "REF9", stmt.Deposits[0].Referencia)
}

func TestParseCSV_DecimalComma(t *testing.T) {
	csv := strings.Join([]string{
		"FECHA;DESCRIPCIÓN;SUCURSAL;DCTO.;VALOR;SALDO",
		"15/01/2024;TRANSFERENCIA DESDE NEQUI;;00126;$ 150.000,00;1.150.000,00",
		"15/01/2024;ABONO;;00127;280000,50;1.430.000,50",
	}, "\n")

	stmt, err := NewStatementParser(zerolog.Nop()).ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Deposits, 2)
	assert.True(t, dec("150000").Equal(stmt.Deposits[0].Monto))
	assert.True(t, dec("280000.50").Equal(stmt.Deposits[1].Monto))
}

func TestParseCSV_BBVASeparateColumns(t *testing.T) {
	csv := strings.Join([]string{
		"Fecha;Concepto;Referencia;Cargos;Abonos;Saldo",
		"15/01/2024;ABONO;A1;;75000;175000",
		"15/01/2024;CARGO;A2;25000;;150000",
	}, "\n")

	stmt, err := NewStatementParser(zerolog.Nop()).ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "BBVA", stmt.Bank)
	require.Len(t, stmt.Deposits, 1)
	assert.True(t, dec("75000").Equal(stmt.Deposits[0].Monto))
}

func TestParseCSV_Errors(t *testing.T) {
	p := NewStatementParser(zerolog.Nop())

	_, err := p.ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyStatement)

	_, err = p.ParseCSV(strings.NewReader("a,b,c\n1,2,3\n"))
	assert.ErrorIs(t, err, ErrUnknownBank)
}

func TestParseXLSX_Nequi(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Fecha del movimiento", "Descripción", "Valor", "Saldo"},
		{"15/01/2024", "Recibí de JUAN", "130000", "130000"},
		{"15/01/2024", "Envío a PEDRO", "-30000", "100000"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	stmt, err := NewStatementParser(zerolog.Nop()).Parse(bytes.NewReader(buf.Bytes()), FileTypeXLSX)
	require.NoError(t, err)
	assert.Equal(t, "Nequi", stmt.Bank)
	require.Len(t, stmt.Deposits, 1)
	assert.True(t, dec("130000").Equal(stmt.Deposits[0].Monto))
	assert.Equal(t, "Recibí de JUAN", stmt.Deposits[0].Descripcion)
}

func TestParse_UnsupportedType(t *testing.T) {
	_, err := NewStatementParser(zerolog.Nop()).Parse(strings.NewReader(""), "PDF")
	assert.Error(t, err)
}
