package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

func TestSummarize(t *testing.T) {
	txns := []models.Transaction{
		// 23:30 UTC on the 15th is still the 15th in Bogota.
		{Fecha: time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC), Asesor: "Carlos", PrecioNeto: dec("100000"), TarifaServicio: dec("20000"), Impuesto4x1000: dec("-400"), GananciaBruta: dec("19600"), Pagado: true},
		// 03:00 UTC on the 16th is the 15th in Bogota.
		{Fecha: time.Date(2024, 1, 16, 3, 0, 0, 0, time.UTC), Asesor: "Ana", PrecioNeto: dec("50000"), TarifaServicio: dec("10000"), Impuesto4x1000: dec("-200"), GananciaBruta: dec("9800")},
		{Fecha: time.Date(2024, 1, 16, 15, 0, 0, 0, time.UTC), Asesor: "Carlos", PrecioNeto: dec("10000"), TarifaServicio: dec("5000"), Impuesto4x1000: dec("-40"), GananciaBruta: dec("4960"), Pagado: true},
	}

	s := Summarize(txns)

	require.Len(t, s.Days, 2)
	assert.Equal(t, "2024-01-15", s.Days[0].Fecha)
	assert.Equal(t, 2, s.Days[0].Count)
	assert.True(t, dec("150000").Equal(s.Days[0].PrecioNeto))
	assert.Equal(t, 1, s.Days[0].Pagados)
	assert.Equal(t, 1, s.Days[0].NoPagados)
	assert.Equal(t, "2024-01-16", s.Days[1].Fecha)

	require.Len(t, s.Asesores, 2)
	assert.Equal(t, "Ana", s.Asesores[0].Asesor)
	assert.Equal(t, "Carlos", s.Asesores[1].Asesor)
	assert.Equal(t, 2, s.Asesores[1].Count)
	assert.True(t, dec("24560").Equal(s.Asesores[1].GananciaBruta))

	assert.Equal(t, 3, s.Total.Count)
	assert.True(t, dec("35000").Equal(s.Total.TarifaServicio))
	assert.True(t, dec("-640").Equal(s.Total.Impuesto4x1000))
	assert.Equal(t, 2, s.Total.Pagados)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.NotNil(t, s.Days)
	assert.NotNil(t, s.Asesores)
	assert.Zero(t, s.Total.Count)
}
