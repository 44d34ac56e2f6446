package metrics

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/ads-insights/internal/models"
	"github.com/AngelCh415/ads-insights/internal/store"
)

func seeded() *store.MemoryStore {
	st := store.NewMemoryStore()
	d := func(s string) time.Time { v, _ := time.Parse("2006-01-02", s); return v }
	add := func(name, platform, cat, start, end string, spend float64) {
		st.Insert(models.RawPeriodRow{
			Platform: platform, EntityID: "id-" + name, EntityName: name, Category: cat,
			ReportingStarts: d(start), ReportingEnds: d(end), Spend: spend, Revenue: spend * 2, Clicks: 10,
		})
	}
	add("A", "meta", "Tumbling Mat", "2025-07-28", "2025-08-03", 10)
	add("A", "meta", "Tumbling Mat", "2025-08-04", "2025-08-10", 20)
	add("A", "meta", "Tumbling Mat", "2025-08-04", "2025-08-10", 5)
	add("B", "google", "Play Mat", "2025-08-04", "2025-08-10", 100)
	add("C", "tiktok", "Play Mat", "2025-08-11", "2025-08-17", 1)
	return st
}

func TestQueryMomentumRankedAndFiltered(t *testing.T) {
	require := require.New(t)
	svc := NewService(seeded())

	rows, err := svc.QueryMomentum(url.Values{})
	require.NoError(err)
	require.Len(rows, 3)
	require.Equal("B", rows[0].EntityName)
	require.Equal("A", rows[1].EntityName)
	require.Equal(35.0, rows[1].TotalSpend)
	require.Len(rows[1].WeeklyPeriods, 2)
	require.Equal(25.0, rows[1].WeeklyPeriods[1].Spend)
	require.NotNil(rows[1].Momentum)
	require.Equal(150.0, rows[1].Momentum.Spend)

	rows, err = svc.QueryMomentum(url.Values{"platform": {"Meta, tiktok"}})
	require.NoError(err)
	require.Len(rows, 2)

	rows, err = svc.QueryMomentum(url.Values{"from": {"2025-08-04"}, "limit": {"1"}, "offset": {"1"}})
	require.NoError(err)
	require.Len(rows, 1)
	require.Equal("A", rows[0].EntityName)
	require.Len(rows[0].WeeklyPeriods, 1)

	_, err = svc.QueryMomentum(url.Values{"to": {"08/10/2025"}})
	require.Error(err)
}

func TestQueryMonthlyAndPivot(t *testing.T) {
	svc := NewService(seeded())

	monthly, err := svc.QueryMonthly(url.Values{"category": {"play mat"}})
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	require.Equal(t, "2025-08", monthly[0].Month)
	require.Equal(t, 101.0, monthly[0].Spend)

	pivot, err := svc.QueryPivot(url.Values{})
	require.NoError(t, err)
	require.Equal(t, "Play Mat", pivot[0].Value)
	require.Equal(t, 2, pivot[0].Entities)

	_, err = svc.QueryPivot(url.Values{"dimension": {"nope"}})
	require.Error(t, err)
}

func TestCollectorsExposeMetrics(t *testing.T) {
	c := NewCollectors()
	c.AdNamesParsed.WithLabelValues("structured").Inc()
	c.Categorizations.WithLabelValues(models.RuleSetCategory, "rule").Add(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `ads_categorizations_total{rule_set="category",source="rule"} 2`)
	require.Contains(t, rec.Body.String(), `ads_ad_names_parsed_total{mode="structured"} 1`)
}
