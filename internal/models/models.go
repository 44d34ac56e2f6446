package models

import "time"

const (
	OptimizationStandard    = "Standard"
	OptimizationIncremental = "Incremental"

	DefaultCategory     = "Uncategorized"
	DefaultCampaignType = "Unclassified"
)

// Rule sets que comparte el mismo store de reglas.
const (
	RuleSetCategory     = "category"
	RuleSetCampaignType = "campaign_type"
)

type ParsedAdAttributes struct {
	LaunchDate           *time.Time `json:"launch_date"`
	DaysLive             int        `json:"days_live"`
	Category             string     `json:"category"`
	Product              string     `json:"product"`
	Color                string     `json:"color"`
	ContentType          string     `json:"content_type"`
	Handle               string     `json:"handle"`
	Format               string     `json:"format"`
	CampaignOptimization string     `json:"campaign_optimization"`
	AdNameClean          string     `json:"ad_name_clean"`
}

type CategoryRule struct {
	ID       int64  `json:"id"`
	RuleSet  string `json:"rule_set"`
	RuleName string `json:"rule_name"`
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
	IsActive bool   `json:"is_active"`
}

type CategoryOverride struct {
	RuleSet   string    `json:"rule_set"`
	EntityID  string    `json:"entity_id"`
	Category  string    `json:"category"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// RawPeriodRow es un anuncio × periodo de reporte, tal como lo guarda el sync.
type RawPeriodRow struct {
	Platform        string
	AccountID       string
	EntityID        string
	EntityName      string
	CampaignID      string
	CampaignName    string
	ReportingStarts time.Time
	ReportingEnds   time.Time
	Spend           float64
	Purchases       int
	Revenue         float64
	Clicks          int
	Impressions     int
	Category        string
	CampaignType    string
	Attributes      ParsedAdAttributes
}

type PeriodKey struct {
	Starts time.Time
	Ends   time.Time
}

func (r RawPeriodRow) PeriodKey() PeriodKey {
	return PeriodKey{Starts: r.ReportingStarts, Ends: r.ReportingEnds}
}

type Totals struct {
	Spend       float64
	Revenue     float64
	Purchases   int
	Clicks      int
	Impressions int
}

func (t *Totals) AddRow(r RawPeriodRow) {
	t.Spend += r.Spend
	t.Revenue += r.Revenue
	t.Purchases += r.Purchases
	t.Clicks += r.Clicks
	t.Impressions += r.Impressions
}

func (t Totals) ROAS() float64 { return safeDiv(t.Revenue, t.Spend) }
func (t Totals) CPA() float64  { return safeDiv(t.Spend, float64(t.Purchases)) }
func (t Totals) CPC() float64  { return safeDiv(t.Spend, float64(t.Clicks)) }

type WeeklyPeriodSummary struct {
	ReportingStarts time.Time
	ReportingEnds   time.Time
	Spend           float64
	Revenue         float64
	Purchases       int
	Clicks          int
	Impressions     int
	ROAS            float64
	CPA             float64
	CPC             float64
}

// Add suma las métricas de la fila al periodo y recalcula los ratios.
func (p *WeeklyPeriodSummary) Add(r RawPeriodRow) {
	t := Totals{Spend: p.Spend, Revenue: p.Revenue, Purchases: p.Purchases, Clicks: p.Clicks, Impressions: p.Impressions}
	t.AddRow(r)
	p.Spend, p.Revenue, p.Purchases, p.Clicks, p.Impressions = t.Spend, t.Revenue, t.Purchases, t.Clicks, t.Impressions
	p.ROAS, p.CPA, p.CPC = t.ROAS(), t.CPA(), t.CPC()
}

type EntityMomentumRecord struct {
	EntityID             string
	EntityName           string
	Platform             string
	CampaignName         string
	Category             string
	CampaignType         string
	Product              string
	Color                string
	ContentType          string
	Handle               string
	Format               string
	CampaignOptimization string
	LaunchDate           *time.Time
	DaysLive             int
	AdNameClean          string

	WeeklyPeriods []WeeklyPeriodSummary

	TotalSpend       float64
	TotalRevenue     float64
	TotalPurchases   int
	TotalClicks      int
	TotalImpressions int
	TotalROAS        float64
	TotalCPA         float64
	TotalCPC         float64
}

// Momentum: variación % entre los dos periodos retenidos.
type Momentum struct {
	Spend     float64 `json:"spend_change_pct"`
	Revenue   float64 `json:"revenue_change_pct"`
	Purchases float64 `json:"purchases_change_pct"`
	ROAS      float64 `json:"roas_change_pct"`
	CPA       float64 `json:"cpa_change_pct"`
	CPC       float64 `json:"cpc_change_pct"`
}

// Momentum devuelve nil con menos de dos periodos.
func (e *EntityMomentumRecord) Momentum() *Momentum {
	if len(e.WeeklyPeriods) < 2 {
		return nil
	}
	prev, cur := e.WeeklyPeriods[len(e.WeeklyPeriods)-2], e.WeeklyPeriods[len(e.WeeklyPeriods)-1]
	return &Momentum{
		Spend:     pctChange(prev.Spend, cur.Spend),
		Revenue:   pctChange(prev.Revenue, cur.Revenue),
		Purchases: pctChange(float64(prev.Purchases), float64(cur.Purchases)),
		ROAS:      pctChange(prev.ROAS, cur.ROAS),
		CPA:       pctChange(prev.CPA, cur.CPA),
		CPC:       pctChange(prev.CPC, cur.CPC),
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func pctChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
