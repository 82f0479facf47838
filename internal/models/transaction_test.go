package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestApplyFormulas(t *testing.T) {
	txn := Transaction{
		PrecioNeto:     decimal.NewFromInt(100000),
		TarifaServicio: decimal.NewFromInt(20000),
		Rappi:          true,
	}

	assert.True(t, txn.ApplyFormulas())
	assert.Equal(t, "-400", txn.Impuesto4x1000.String())
	assert.Equal(t, "20600", txn.GananciaBruta.String())

	// second pass is a no-op
	assert.False(t, txn.ApplyFormulas())
}

func TestApplySoatPrice(t *testing.T) {
	cc := 1600
	txn := Transaction{TipoVehiculo: strPtr("AUTO FAMILIAR"), Cilindraje: &cc}
	require.True(t, txn.ApplySoatPrice())
	assert.Equal(t, "542600", txn.PrecioNeto.String())

	unknown := Transaction{TipoVehiculo: strPtr("PATINETA"), PrecioNeto: decimal.NewFromInt(10)}
	assert.False(t, unknown.ApplySoatPrice())
	assert.Equal(t, "10", unknown.PrecioNeto.String())

	missing := Transaction{}
	assert.False(t, missing.ApplySoatPrice())
}

func TestSet(t *testing.T) {
	var txn Transaction

	require.NoError(t, txn.Set("placa", " ABC123 "))
	assert.Equal(t, "ABC123", txn.Placa)

	require.NoError(t, txn.Set("pagado", true))
	assert.True(t, txn.Pagado)

	require.NoError(t, txn.Set("rappi", "si"))
	assert.True(t, txn.Rappi)

	require.NoError(t, txn.Set("precioNeto", float64(445300)))
	assert.Equal(t, "445300", txn.PrecioNeto.String())

	require.NoError(t, txn.Set("tarifaServicio", "$ 35.000"))
	assert.Equal(t, "35000", txn.TarifaServicio.String())

	require.NoError(t, txn.Set("cilindraje", float64(1400)))
	require.NotNil(t, txn.Cilindraje)
	assert.Equal(t, 1400, *txn.Cilindraje)

	require.NoError(t, txn.Set("cilindraje", nil))
	assert.Nil(t, txn.Cilindraje)

	require.NoError(t, txn.Set("novedad", "Pendiente firma"))
	require.NotNil(t, txn.Novedad)
	require.NoError(t, txn.Set("novedad", ""))
	assert.Nil(t, txn.Novedad)

	require.NoError(t, txn.Set("fecha", "2024-01-15T23:30:00Z"))
	assert.True(t, time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC).Equal(txn.Fecha))

	require.NoError(t, txn.Set("fecha", "2024-01-20"))
	assert.Equal(t, 20, txn.Fecha.Day())
}

func TestSet_Errors(t *testing.T) {
	var txn Transaction

	err := txn.Set("gananciaBruta", float64(1))
	assert.ErrorIs(t, err, ErrUnknownField)

	err = txn.Set("nope", "x")
	assert.ErrorIs(t, err, ErrUnknownField)

	assert.Error(t, txn.Set("pagado", "quizas"))
	assert.Error(t, txn.Set("precioNeto", "abc"))
	assert.Error(t, txn.Set("cilindraje", "mil"))
	assert.Error(t, txn.Set("cilindraje", 1499.9))
	assert.Error(t, txn.Set("fecha", float64(3)))
}

func TestMatches(t *testing.T) {
	cc := 2000
	txn := Transaction{
		Placa:      "XYZ987",
		PrecioNeto: decimal.RequireFromString("953300.00"),
		Cilindraje: &cc,
		Pagado:     true,
		Fecha:      time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC),
	}

	assert.True(t, txn.Matches("placa", "XYZ987"))
	assert.False(t, txn.Matches("placa", "XYZ988"))
	assert.True(t, txn.Matches("precioNeto", float64(953300)))
	assert.True(t, txn.Matches("cilindraje", "2000"))
	assert.False(t, txn.Matches("cilindraje", nil))
	assert.True(t, txn.Matches("pagado", true))
	assert.True(t, txn.Matches("fecha", "2024-01-15T18:30:00-05:00"))
	assert.True(t, txn.Matches("ciudad", nil))
	assert.False(t, txn.Matches("ciudad", "Bogota"))
	assert.False(t, txn.Matches("unknown", "x"))
	assert.False(t, txn.Matches("precioNeto", "abc"))
}

func TestSet_StoresColumnPrecision(t *testing.T) {
	var txn Transaction

	require.NoError(t, txn.Set("precioNeto", "100000.555"))
	assert.Equal(t, "100000.56", txn.PrecioNeto.String())

	require.NoError(t, txn.Set("fecha", "2024-01-15T23:30:00.123456789Z"))
	assert.Equal(t, 123456000, txn.Fecha.Nanosecond())

	// a row read back from numeric(14,2) and timestamptz confirms the edit
	stored := Transaction{
		PrecioNeto: decimal.RequireFromString("100000.56"),
		Fecha:      time.Date(2024, 1, 15, 23, 30, 0, 123456000, time.UTC),
	}
	assert.True(t, stored.Matches("precioNeto", 100000.555))
	assert.True(t, stored.Matches("fecha", "2024-01-15T23:30:00.123456789Z"))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"445300", "445300"},
		{"445.300", "445300"},
		{"$ 1.234.567", "1234567"},
		{"20,000", "20000"},
		{"99999.99", "99999.99"},
		{"", "0"},
		{"-", "0"},
		{"-1.500", "-1500"},
		{"$ 150.000,00", "150000"},
		{"1.234.567,89", "1234567.89"},
		{"1,234.56", "1234.56"},
		{"280000,50", "280000.5"},
		{"100000.555", "100000.555"},
		{"COP 35.000", "35000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := ParseAmount("doce")
	assert.Error(t, err)
}
