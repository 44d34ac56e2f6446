package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/ads-insights/internal/models"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func row(name, start, end string, spend, revenue float64, purchases, clicks int) models.RawPeriodRow {
	return models.RawPeriodRow{
		EntityID:        "id-" + name,
		EntityName:      name,
		ReportingStarts: day(start),
		ReportingEnds:   day(end),
		Spend:           spend,
		Revenue:         revenue,
		Purchases:       purchases,
		Clicks:          clicks,
		Impressions:     clicks * 10,
		Category:        "Tumbling Mat",
	}
}

func TestWeeklyDuplicatePeriodMerges(t *testing.T) {
	require := require.New(t)

	out := Weekly([]models.RawPeriodRow{
		row("Ad X", "2025-08-04", "2025-08-10", 10.00, 30, 1, 5),
		row("Ad X", "2025-08-04", "2025-08-10", 5.00, 0, 0, 5),
	})

	rec := out["Ad X"]
	require.NotNil(rec)
	require.Len(rec.WeeklyPeriods, 1)
	p := rec.WeeklyPeriods[0]
	require.InDelta(15.00, p.Spend, 1e-9)
	require.InDelta(2.0, p.ROAS, 1e-9)
	require.InDelta(15.0, p.CPA, 1e-9)
	require.InDelta(1.5, p.CPC, 1e-9)
	require.InDelta(15.00, rec.TotalSpend, 1e-9)
}

func TestWeeklyDuplicateAlsoCountsInTotals(t *testing.T) {
	out := Weekly([]models.RawPeriodRow{
		row("Ad Y", "2025-07-28", "2025-08-03", 40, 80, 2, 10),
		row("Ad Y", "2025-08-04", "2025-08-10", 100, 0, 0, 0),
		row("Ad Y", "2025-08-04", "2025-08-10", 50, 0, 0, 0),
	})

	rec := out["Ad Y"]
	require.Len(t, rec.WeeklyPeriods, 2)
	require.InDelta(t, 150, rec.WeeklyPeriods[1].Spend, 1e-9)
	require.GreaterOrEqual(t, rec.TotalSpend, 150.0)
	require.InDelta(t, 190, rec.TotalSpend, 1e-9)
}

func TestWeeklyDistinctPeriodsSumExactlyAndKeepLastTwo(t *testing.T) {
	require := require.New(t)

	rows := []models.RawPeriodRow{
		row("Ad Z", "2025-08-11", "2025-08-17", 30, 90, 3, 30),
		row("Ad Z", "2025-07-28", "2025-08-03", 10, 10, 1, 10),
		row("Ad Z", "2025-08-04", "2025-08-10", 20, 40, 2, 20),
	}
	rec := Weekly(rows)["Ad Z"]

	require.InDelta(60, rec.TotalSpend, 1e-9)
	require.InDelta(140, rec.TotalRevenue, 1e-9)
	require.Equal(6, rec.TotalPurchases)
	require.Equal(60, rec.TotalClicks)
	require.Equal(600, rec.TotalImpressions)
	require.InDelta(140.0/60.0, rec.TotalROAS, 1e-9)
	require.InDelta(10, rec.TotalCPA, 1e-9)
	require.InDelta(1, rec.TotalCPC, 1e-9)

	require.Len(rec.WeeklyPeriods, 2)
	require.Equal(day("2025-08-04"), rec.WeeklyPeriods[0].ReportingStarts)
	require.Equal(day("2025-08-11"), rec.WeeklyPeriods[1].ReportingStarts)

	single := Weekly(rows[:1])["Ad Z"]
	require.Len(single.WeeklyPeriods, 1)
}

func TestWeeklySameStartDifferentEndAreDistinct(t *testing.T) {
	out := Weekly([]models.RawPeriodRow{
		row("Ad W", "2025-08-04", "2025-08-10", 1, 0, 0, 0),
		row("Ad W", "2025-08-04", "2025-08-06", 2, 0, 0, 0),
	})
	rec := out["Ad W"]
	require.Len(t, rec.WeeklyPeriods, 2)
	require.Equal(t, day("2025-08-06"), rec.WeeklyPeriods[0].ReportingEnds)
}

func TestWeeklyZeroDenominators(t *testing.T) {
	rec := Weekly([]models.RawPeriodRow{row("Zero", "2025-08-04", "2025-08-10", 0, 50, 0, 0)})["Zero"]

	require.Zero(t, rec.TotalROAS)
	require.Zero(t, rec.TotalCPA)
	require.Zero(t, rec.TotalCPC)
	p := rec.WeeklyPeriods[0]
	require.Zero(t, p.ROAS)
	require.Zero(t, p.CPA)
	require.Zero(t, p.CPC)
}

func TestRankedAndMomentum(t *testing.T) {
	require := require.New(t)
	out := Weekly([]models.RawPeriodRow{
		row("Small", "2025-08-04", "2025-08-10", 5, 0, 0, 0),
		row("Big", "2025-07-28", "2025-08-03", 100, 200, 4, 50),
		row("Big", "2025-08-04", "2025-08-10", 150, 450, 5, 60),
	})

	ranked := Ranked(out)
	require.Equal("Big", ranked[0].EntityName)
	require.Equal("Small", ranked[1].EntityName)

	m := ranked[0].Momentum()
	require.NotNil(m)
	require.InDelta(50, m.Spend, 1e-9)
	require.InDelta(125, m.Revenue, 1e-9)
	require.InDelta(50, m.ROAS, 1e-9)
	require.Nil(ranked[1].Momentum())

	views := Views(ranked)
	require.Equal("2025-08-04", views[0].WeeklyPeriods[1].ReportingStarts)
	require.Equal(250.0, views[0].TotalSpend)
	require.Equal(2.6, views[0].TotalROAS)
	require.Equal(27.78, views[0].TotalCPA)
	require.Equal(2.2727, views[0].TotalCPC)
}

func TestWeeklyEmpty(t *testing.T) {
	require.Empty(t, Weekly(nil))
	require.Empty(t, Ranked(nil))
}
