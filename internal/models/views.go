package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type PeriodView struct {
	ReportingStarts string  `json:"reporting_starts"`
	ReportingEnds   string  `json:"reporting_ends"`
	Spend           float64 `json:"spend"`
	Revenue         float64 `json:"revenue"`
	Purchases       int     `json:"purchases"`
	Clicks          int     `json:"clicks"`
	Impressions     int     `json:"impressions"`
	ROAS            float64 `json:"roas"`
	CPA             float64 `json:"cpa"`
	CPC             float64 `json:"cpc"`
}

type EntityMomentumView struct {
	EntityID             string       `json:"entity_id"`
	EntityName           string       `json:"entity_name"`
	Platform             string       `json:"platform"`
	CampaignName         string       `json:"campaign_name"`
	Category             string       `json:"category"`
	CampaignType         string       `json:"campaign_type"`
	Product              string       `json:"product"`
	Color                string       `json:"color"`
	ContentType          string       `json:"content_type"`
	Handle               string       `json:"handle"`
	Format               string       `json:"format"`
	CampaignOptimization string       `json:"campaign_optimization"`
	LaunchDate           string       `json:"launch_date,omitempty"`
	DaysLive             int          `json:"days_live"`
	AdNameClean          string       `json:"ad_name_clean"`
	WeeklyPeriods        []PeriodView `json:"weekly_periods"`
	Momentum             *Momentum    `json:"momentum,omitempty"`
	TotalSpend           float64      `json:"total_spend"`
	TotalRevenue         float64      `json:"total_revenue"`
	TotalPurchases       int          `json:"total_purchases"`
	TotalClicks          int          `json:"total_clicks"`
	TotalImpressions     int          `json:"total_impressions"`
	TotalROAS            float64      `json:"total_roas"`
	TotalCPA             float64      `json:"total_cpa"`
	TotalCPC             float64      `json:"total_cpc"`
}

type MonthlyView struct {
	Month       string  `json:"month"`
	Category    string  `json:"category"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Purchases   int     `json:"purchases"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	ROAS        float64 `json:"roas"`
	CPA         float64 `json:"cpa"`
	CPC         float64 `json:"cpc"`
}

type PivotView struct {
	Dimension   string  `json:"dimension"`
	Value       string  `json:"value"`
	Entities    int     `json:"entities"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Purchases   int     `json:"purchases"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	ROAS        float64 `json:"roas"`
	CPA         float64 `json:"cpa"`
	CPC         float64 `json:"cpc"`
}

func (p WeeklyPeriodSummary) View() PeriodView {
	return PeriodView{
		ReportingStarts: p.ReportingStarts.Format(dateLayout),
		ReportingEnds:   p.ReportingEnds.Format(dateLayout),
		Spend:           Round2(p.Spend),
		Revenue:         Round2(p.Revenue),
		Purchases:       p.Purchases,
		Clicks:          p.Clicks,
		Impressions:     p.Impressions,
		ROAS:            Round4(p.ROAS),
		CPA:             Round2(p.CPA),
		CPC:             Round4(p.CPC),
	}
}

func (e *EntityMomentumRecord) View() EntityMomentumView {
	periods := make([]PeriodView, 0, len(e.WeeklyPeriods))
	for _, p := range e.WeeklyPeriods {
		periods = append(periods, p.View())
	}
	v := EntityMomentumView{
		EntityID:             e.EntityID,
		EntityName:           e.EntityName,
		Platform:             e.Platform,
		CampaignName:         e.CampaignName,
		Category:             e.Category,
		CampaignType:         e.CampaignType,
		Product:              e.Product,
		Color:                e.Color,
		ContentType:          e.ContentType,
		Handle:               e.Handle,
		Format:               e.Format,
		CampaignOptimization: e.CampaignOptimization,
		DaysLive:             e.DaysLive,
		AdNameClean:          e.AdNameClean,
		WeeklyPeriods:        periods,
		TotalSpend:           Round2(e.TotalSpend),
		TotalRevenue:         Round2(e.TotalRevenue),
		TotalPurchases:       e.TotalPurchases,
		TotalClicks:          e.TotalClicks,
		TotalImpressions:     e.TotalImpressions,
		TotalROAS:            Round4(e.TotalROAS),
		TotalCPA:             Round2(e.TotalCPA),
		TotalCPC:             Round4(e.TotalCPC),
	}
	if e.LaunchDate != nil {
		v.LaunchDate = e.LaunchDate.Format(dateLayout)
	}
	if m := e.Momentum(); m != nil {
		m.Spend, m.Revenue, m.Purchases = Round2(m.Spend), Round2(m.Revenue), Round2(m.Purchases)
		m.ROAS, m.CPA, m.CPC = Round2(m.ROAS), Round2(m.CPA), Round2(m.CPC)
		v.Momentum = m
	}
	return v
}

// MonthKey: mes calendario (YYYY-MM) en que empieza el periodo.
func MonthKey(t time.Time) string { return t.Format("2006-01") }

// Round2 redondea alejándose de cero (spend, revenue, cpa).
func Round2(f float64) float64 { return decimal.NewFromFloat(f).Round(2).InexactFloat64() }

// Round4 para roas y cpc.
func Round4(f float64) float64 { return decimal.NewFromFloat(f).Round(4).InexactFloat64() }
