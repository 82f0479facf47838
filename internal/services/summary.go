package services

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tramitesplus/cuadre-api/internal/models"
	"github.com/tramitesplus/cuadre-api/internal/timeutil"
)

// Totals aggregates a group of transactions.
type Totals struct {
	Count          int             `json:"count"`
	PrecioNeto     decimal.Decimal `json:"precioNeto"`
	TarifaServicio decimal.Decimal `json:"tarifaServicio"`
	Impuesto4x1000 decimal.Decimal `json:"impuesto4x1000"`
	GananciaBruta  decimal.Decimal `json:"gananciaBruta"`
	Pagados        int             `json:"pagados"`
	NoPagados      int             `json:"noPagados"`
}

func (t *Totals) add(txn models.Transaction) {
	t.Count++
	t.PrecioNeto = t.PrecioNeto.Add(txn.PrecioNeto)
	t.TarifaServicio = t.TarifaServicio.Add(txn.TarifaServicio)
	t.Impuesto4x1000 = t.Impuesto4x1000.Add(txn.Impuesto4x1000)
	t.GananciaBruta = t.GananciaBruta.Add(txn.GananciaBruta)
	if txn.Pagado {
		t.Pagados++
	} else {
		t.NoPagados++
	}
}

// DaySummary holds the totals of one Bogota day.
type DaySummary struct {
	Fecha string `json:"fecha"`
	Totals
}

// AsesorSummary holds the totals of one advisor.
type AsesorSummary struct {
	Asesor string `json:"asesor"`
	Totals
}

// Summary is the response of the summary endpoint.
type Summary struct {
	Days     []DaySummary    `json:"days"`
	Asesores []AsesorSummary `json:"asesores"`
	Total    Totals          `json:"total"`
}

// Summarize groups transactions by Bogota day (ascending) and by advisor
// (by name). Rows with no advisor are grouped under "".
func Summarize(txns []models.Transaction) Summary {
	days := map[string]*Totals{}
	asesores := map[string]*Totals{}
	var total Totals

	for _, t := range txns {
		key := timeutil.DateKey(t.Fecha)
		if days[key] == nil {
			days[key] = &Totals{}
		}
		days[key].add(t)

		if asesores[t.Asesor] == nil {
			asesores[t.Asesor] = &Totals{}
		}
		asesores[t.Asesor].add(t)

		total.add(t)
	}

	out := Summary{
		Days:     make([]DaySummary, 0, len(days)),
		Asesores: make([]AsesorSummary, 0, len(asesores)),
		Total:    total,
	}
	for key, totals := range days {
		out.Days = append(out.Days, DaySummary{Fecha: key, Totals: *totals})
	}
	for name, totals := range asesores {
		out.Asesores = append(out.Asesores, AsesorSummary{Asesor: name, Totals: *totals})
	}
	sort.Slice(out.Days, func(i, j int) bool { return out.Days[i].Fecha < out.Days[j].Fecha })
	sort.Slice(out.Asesores, func(i, j int) bool { return out.Asesores[i].Asesor < out.Asesores[j].Asesor })
	return out
}
