package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/ads-insights/internal/adname"
	"github.com/AngelCh415/ads-insights/internal/categorize"
	"github.com/AngelCh415/ads-insights/internal/config"
	"github.com/AngelCh415/ads-insights/internal/ingest"
	"github.com/AngelCh415/ads-insights/internal/metrics"
	"github.com/AngelCh415/ads-insights/internal/models"
	"github.com/AngelCh415/ads-insights/internal/scheduler"
	"github.com/AngelCh415/ads-insights/internal/store"
	"github.com/AngelCh415/ads-insights/internal/utils"
)

const feed = `[
 {"account_id":"act_1","ad_id":"a1","ad_name":"7/9/2025 - Tumbling Mat - Folklore - Fog - Whitelist - BrookeKnuth - Video - Folklore Launch","campaign_id":"c1","campaign_name":"Non-Brand Prospecting","date_start":"2025-07-28","date_stop":"2025-08-03","spend":10,"purchases":1,"revenue":20,"clicks":5,"impressions":500},
 {"account_id":"act_1","ad_id":"a1","ad_name":"7/9/2025 - Tumbling Mat - Folklore - Fog - Whitelist - BrookeKnuth - Video - Folklore Launch","campaign_id":"c1","campaign_name":"Non-Brand Prospecting","date_start":"2025-08-04","date_stop":"2025-08-10","spend":20,"purchases":2,"revenue":60,"clicks":10,"impressions":900}
]`

func newServer(t *testing.T, feedURL string) (http.Handler, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, store.SeedDefaults(context.Background(), st))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	prom := metrics.NewCollectors()
	cat, typer := categorize.New(st, log), categorize.NewCampaignTyper(st, log)
	cfg := config.Config{FeedURLs: map[string]string{}}
	if feedURL != "" {
		cfg.FeedURLs[config.PlatformMeta] = feedURL
	}
	parser := adname.New(adname.WithClock(func() time.Time { return time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC) }))
	etl := ingest.NewETL(ingest.NewHTTPClient(time.Second), st, log, cfg, cat, typer, prom,
		ingest.WithParser(parser), ingest.WithBackoff(utils.NewBackoff(time.Millisecond, 1)))
	return NewRouter(log, Deps{
		ETL:     etl,
		Reports: metrics.NewService(st),
		Prom:    prom,
		Parser:  parser,
		Cat:     cat,
		Typer:   typer,
		Rules:   st,
	}), st
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, rd))
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newServer(t, "")
	require.Equal(t, 200, do(h, http.MethodGet, "/healthz", "").Code)
	require.Equal(t, "ready", do(h, http.MethodGet, "/readyz", "").Body.String())
}

func TestIngestThenReports(t *testing.T) {
	require := require.New(t)
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(feed)) }))
	defer src.Close()
	h, _ := newServer(t, src.URL)

	rec := do(h, http.MethodPost, "/ingest/run", "")
	require.Equal(http.StatusAccepted, rec.Code)
	var res ingest.SyncResult
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(2, res.Stored)

	rec = do(h, http.MethodGet, "/reports/momentum?category=tumbling%20mat", "")
	require.Equal(200, rec.Code)
	var views []models.EntityMomentumView
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(views, 1)
	require.Equal(30.0, views[0].TotalSpend)
	require.Equal("Non-Brand", views[0].CampaignType)
	require.NotNil(views[0].Momentum)
	require.Equal(100.0, views[0].Momentum.Spend)

	rec = do(h, http.MethodGet, "/reports/pivot?dimension=handle", "")
	require.Equal(200, rec.Code)
	require.Contains(rec.Body.String(), "BrookeKnuth")

	rec = do(h, http.MethodGet, "/reports/pivot?dimension=weather", "")
	require.Equal(400, rec.Code)

	rec = do(h, http.MethodGet, "/reports/monthly?from=nope", "")
	require.Equal(400, rec.Code)

	rec = do(h, http.MethodGet, "/export/xlsx", "")
	require.Equal(200, rec.Code)
	require.NotZero(rec.Body.Len())

	rec = do(h, http.MethodGet, "/metrics", "")
	require.Contains(rec.Body.String(), `ads_sync_rows_total{outcome="stored",platform="meta"} 2`)
}

func TestJobsWithoutScheduler(t *testing.T) {
	h, _ := newServer(t, "")
	rec := do(h, http.MethodGet, "/jobs", "")
	require.Equal(t, 200, rec.Code)
	var got struct {
		SyncRunning bool                `json:"sync_running"`
		Jobs        []scheduler.JobInfo `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.False(t, got.SyncRunning)
	require.Empty(t, got.Jobs)
}

func TestJobsListsScheduledSync(t *testing.T) {
	require := require.New(t)
	st := store.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	prom := metrics.NewCollectors()
	cat, typer := categorize.New(st, log), categorize.NewCampaignTyper(st, log)
	etl := ingest.NewETL(ingest.NewHTTPClient(time.Second), st, log, config.Config{}, cat, typer, prom)
	sched := scheduler.New(time.UTC, time.Second, log)
	require.NoError(sched.AddJob("platform-sync", "@daily", func(context.Context) error { return nil }))

	h := NewRouter(log, Deps{ETL: etl, Reports: metrics.NewService(st), Prom: prom, Parser: adname.New(), Cat: cat, Typer: typer, Rules: st, Jobs: sched})
	rec := do(h, http.MethodGet, "/jobs", "")
	require.Equal(200, rec.Code)
	require.Contains(rec.Body.String(), `"name": "platform-sync"`)
}

func TestIngestFeedDownIs502(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer src.Close()
	h, _ := newServer(t, src.URL)
	require.Equal(t, http.StatusBadGateway, do(h, http.MethodPost, "/ingest/run", "").Code)
	require.Equal(t, 400, do(h, http.MethodPost, "/ingest/run?since=yesterday", "").Code)
}

func TestExportWithoutSink(t *testing.T) {
	h, _ := newServer(t, "")
	require.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodPost, "/export/run", "").Code)
	require.Equal(t, 400, do(h, http.MethodPost, "/export/run?from=08-01", "").Code)
}

func TestParseEndpoint(t *testing.T) {
	h, _ := newServer(t, "")
	rec := do(h, http.MethodGet, "/parse?ad_name=7%2F9%2F2025+-+Tumbling+Mat+-+Folklore+-+Fog+-+Whitelist+-+BrookeKnuth+-+Video+-+Name&campaign_name=Incrementality", "")
	require.Equal(t, 200, rec.Code)
	var got models.ParsedAdAttributes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Tumbling Mat", got.Category)
	require.Equal(t, 33, got.DaysLive)
	require.Equal(t, models.OptimizationIncremental, got.CampaignOptimization)
}

func TestCategorizeWithOverrides(t *testing.T) {
	require := require.New(t)
	h, _ := newServer(t, "")

	rec := do(h, http.MethodGet, "/categorize?entity_id=c7&entity_name=Brand+Search", "")
	require.Equal(200, rec.Code)
	var got map[string]string
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(models.DefaultCategory, got["category"])
	require.Equal("Brand", got["campaign_type"])
	require.Equal("rule", got["campaign_type_source"])

	rec = do(h, http.MethodPut, "/overrides/category/c7", `{"category":"Wall Pad","created_by":"ops"}`)
	require.Equal(http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/categorize?entity_id=c7&entity_name=Brand+Search", "")
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal("Wall Pad", got["category"])
	require.Equal("override", got["category_source"])

	require.Equal(http.StatusNoContent, do(h, http.MethodDelete, "/overrides/category/c7", "").Code)
	require.Equal(http.StatusNotFound, do(h, http.MethodDelete, "/overrides/category/c7", "").Code)
	require.Equal(http.StatusNotFound, do(h, http.MethodPut, "/overrides/colors/c7", `{"category":"x"}`).Code)
	require.Equal(400, do(h, http.MethodPut, "/overrides/category/c7", `{}`).Code)
}

func TestRulesEndpoints(t *testing.T) {
	require := require.New(t)
	h, _ := newServer(t, "")

	rec := do(h, http.MethodPut, "/rules/campaign_type", `{"rule_name":"pmax","pattern":"PMax","category":"Performance Max","priority":200,"is_active":true}`)
	require.Equal(200, rec.Code)

	rec = do(h, http.MethodGet, "/rules/campaign_type", "")
	require.Equal(200, rec.Code)
	var rules []models.CategoryRule
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &rules))
	require.Equal("pmax", rules[0].RuleName)
	require.Equal(models.RuleSetCampaignType, rules[0].RuleSet)

	rec = do(h, http.MethodGet, "/categorize?entity_id=c9&entity_name=Q4+PMax+Brand", "")
	require.Contains(rec.Body.String(), `"campaign_type": "Performance Max"`)

	require.Equal(400, do(h, http.MethodPut, "/rules/category", `{"rule_name":"x"}`).Code)
}
