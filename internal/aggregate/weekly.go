// Package aggregate agrupa filas por periodo de reporte en vistas de momentum,
// resúmenes mensuales y tablas pivote.
package aggregate

import (
	"sort"

	"github.com/AngelCh415/ads-insights/internal/models"
)

// RetainedPeriods es cuántos periodos se conservan para la comparación semana contra semana.
const RetainedPeriods = 2

type entityAcc struct {
	rec     *models.EntityMomentumRecord
	totals  models.Totals
	periods map[models.PeriodKey]*models.WeeklyPeriodSummary
}

// Weekly agrupa por entity_name y periodo. Filas repetidas del mismo periodo
// se fusionan en un solo resumen, pero sus métricas sí suman a los totales.
func Weekly(rows []models.RawPeriodRow) map[string]*models.EntityMomentumRecord {
	accs := map[string]*entityAcc{}
	for _, r := range rows {
		acc, ok := accs[r.EntityName]
		if !ok {
			acc = &entityAcc{rec: newRecord(r), periods: map[models.PeriodKey]*models.WeeklyPeriodSummary{}}
			accs[r.EntityName] = acc
		}
		k := r.PeriodKey()
		p, seen := acc.periods[k]
		if !seen {
			p = &models.WeeklyPeriodSummary{ReportingStarts: r.ReportingStarts, ReportingEnds: r.ReportingEnds}
			acc.periods[k] = p
		}
		p.Add(r)
		acc.totals.AddRow(r)
	}

	out := make(map[string]*models.EntityMomentumRecord, len(accs))
	for name, acc := range accs {
		out[name] = acc.finalize()
	}
	return out
}

func newRecord(r models.RawPeriodRow) *models.EntityMomentumRecord {
	a := r.Attributes
	return &models.EntityMomentumRecord{
		EntityID:             r.EntityID,
		EntityName:           r.EntityName,
		Platform:             r.Platform,
		CampaignName:         r.CampaignName,
		Category:             r.Category,
		CampaignType:         r.CampaignType,
		Product:              a.Product,
		Color:                a.Color,
		ContentType:          a.ContentType,
		Handle:               a.Handle,
		Format:               a.Format,
		CampaignOptimization: a.CampaignOptimization,
		LaunchDate:           a.LaunchDate,
		DaysLive:             a.DaysLive,
		AdNameClean:          a.AdNameClean,
	}
}

func (acc *entityAcc) finalize() *models.EntityMomentumRecord {
	periods := make([]models.WeeklyPeriodSummary, 0, len(acc.periods))
	for _, p := range acc.periods {
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if !periods[i].ReportingStarts.Equal(periods[j].ReportingStarts) {
			return periods[i].ReportingStarts.Before(periods[j].ReportingStarts)
		}
		return periods[i].ReportingEnds.Before(periods[j].ReportingEnds)
	})
	if len(periods) > RetainedPeriods {
		periods = periods[len(periods)-RetainedPeriods:]
	}

	rec := acc.rec
	t := acc.totals
	rec.WeeklyPeriods = periods
	rec.TotalSpend = t.Spend
	rec.TotalRevenue = t.Revenue
	rec.TotalPurchases = t.Purchases
	rec.TotalClicks = t.Clicks
	rec.TotalImpressions = t.Impressions
	rec.TotalROAS = t.ROAS()
	rec.TotalCPA = t.CPA()
	rec.TotalCPC = t.CPC()
	return rec
}

// Ranked ordena por total_spend descendente; empates por nombre.
func Ranked(m map[string]*models.EntityMomentumRecord) []*models.EntityMomentumRecord {
	out := make([]*models.EntityMomentumRecord, 0, len(m))
	for _, rec := range m {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSpend != out[j].TotalSpend {
			return out[i].TotalSpend > out[j].TotalSpend
		}
		return out[i].EntityName < out[j].EntityName
	})
	return out
}

func Views(recs []*models.EntityMomentumRecord) []models.EntityMomentumView {
	out := make([]models.EntityMomentumView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.View())
	}
	return out
}
