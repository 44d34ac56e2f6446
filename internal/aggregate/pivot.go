package aggregate

import (
	"errors"
	"sort"
	"strings"

	"github.com/AngelCh415/ads-insights/internal/models"
)

var ErrUnknownDimension = errors.New("unknown pivot dimension")

const unknownValue = "Unknown"

var dimensions = map[string]func(models.RawPeriodRow) string{
	"category":              func(r models.RawPeriodRow) string { return r.Category },
	"campaign_type":         func(r models.RawPeriodRow) string { return r.CampaignType },
	"platform":              func(r models.RawPeriodRow) string { return r.Platform },
	"product":               func(r models.RawPeriodRow) string { return r.Attributes.Product },
	"color":                 func(r models.RawPeriodRow) string { return r.Attributes.Color },
	"content_type":          func(r models.RawPeriodRow) string { return r.Attributes.ContentType },
	"handle":                func(r models.RawPeriodRow) string { return r.Attributes.Handle },
	"format":                func(r models.RawPeriodRow) string { return r.Attributes.Format },
	"campaign_optimization": func(r models.RawPeriodRow) string { return r.Attributes.CampaignOptimization },
}

func Dimensions() []string {
	out := make([]string, 0, len(dimensions))
	for d := range dimensions {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Pivot suma métricas por valor de la dimensión pedida.
func Pivot(rows []models.RawPeriodRow, dimension string) ([]models.PivotView, error) {
	dimension = strings.ToLower(strings.TrimSpace(dimension))
	get, ok := dimensions[dimension]
	if !ok {
		return nil, ErrUnknownDimension
	}
	type bucket struct {
		totals   models.Totals
		entities map[string]struct{}
	}
	buckets := map[string]*bucket{}
	for _, r := range rows {
		v := strings.TrimSpace(get(r))
		if v == "" {
			v = unknownValue
		}
		b, ok := buckets[v]
		if !ok {
			b = &bucket{entities: map[string]struct{}{}}
			buckets[v] = b
		}
		b.totals.AddRow(r)
		b.entities[r.EntityName] = struct{}{}
	}

	out := make([]models.PivotView, 0, len(buckets))
	for v, b := range buckets {
		t := b.totals
		out = append(out, models.PivotView{
			Dimension:   dimension,
			Value:       v,
			Entities:    len(b.entities),
			Spend:       models.Round2(t.Spend),
			Revenue:     models.Round2(t.Revenue),
			Purchases:   t.Purchases,
			Clicks:      t.Clicks,
			Impressions: t.Impressions,
			ROAS:        models.Round4(t.ROAS()),
			CPA:         models.Round2(t.CPA()),
			CPC:         models.Round4(t.CPC()),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// Monthly agrupa por mes calendario de reporting_starts y categoría.
func Monthly(rows []models.RawPeriodRow) []models.MonthlyView {
	type key struct{ month, category string }
	acc := map[key]*models.Totals{}
	for _, r := range rows {
		cat := r.Category
		if cat == "" {
			cat = models.DefaultCategory
		}
		k := key{month: models.MonthKey(r.ReportingStarts), category: cat}
		t, ok := acc[k]
		if !ok {
			t = &models.Totals{}
			acc[k] = t
		}
		t.AddRow(r)
	}

	out := make([]models.MonthlyView, 0, len(acc))
	for k, t := range acc {
		out = append(out, models.MonthlyView{
			Month:       k.month,
			Category:    k.category,
			Spend:       models.Round2(t.Spend),
			Revenue:     models.Round2(t.Revenue),
			Purchases:   t.Purchases,
			Clicks:      t.Clicks,
			Impressions: t.Impressions,
			ROAS:        models.Round4(t.ROAS()),
			CPA:         models.Round2(t.CPA()),
			CPC:         models.Round4(t.CPC()),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].Category < out[j].Category
	})
	return out
}
