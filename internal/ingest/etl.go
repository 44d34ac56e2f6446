package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AngelCh415/ads-insights/internal/adname"
	"github.com/AngelCh415/ads-insights/internal/categorize"
	"github.com/AngelCh415/ads-insights/internal/config"
	"github.com/AngelCh415/ads-insights/internal/metrics"
	"github.com/AngelCh415/ads-insights/internal/models"
	"github.com/AngelCh415/ads-insights/internal/store"
	"github.com/AngelCh415/ads-insights/internal/utils"
)

var ErrSyncInProgress = errors.New("sync already in progress")

type ETL struct {
	c      HTTPClient
	st     *store.MemoryStore
	log    *slog.Logger
	cfg    config.Config
	parser *adname.Parser
	cat    *categorize.Categorizer
	typer  *categorize.Categorizer
	prom   *metrics.Collectors
	bo     utils.Backoff

	// a lo sumo un sync completo a la vez
	running atomic.Bool
}

type Option func(*ETL)

func WithParser(p *adname.Parser) Option { return func(e *ETL) { e.parser = p } }

func WithBackoff(b utils.Backoff) Option { return func(e *ETL) { e.bo = b } }

func NewETL(c HTTPClient, st *store.MemoryStore, log *slog.Logger, cfg config.Config,
	cat, typer *categorize.Categorizer, prom *metrics.Collectors, opts ...Option) *ETL {
	e := &ETL{
		c: c, st: st, log: log, cfg: cfg,
		parser: adname.New(),
		cat:    cat,
		typer:  typer,
		prom:   prom,
		bo:     utils.NewBackoff(200*time.Millisecond, cfg.RetryMaxAttempts),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// number acepta 12.5 y "12.5": los exports de Meta mandan métricas como string.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("number %q: %w", s, err)
	}
	*n = number(f)
	return nil
}

type insightResp []struct {
	AccountID    string `json:"account_id"`
	AdID         string `json:"ad_id"`
	AdName       string `json:"ad_name"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	DateStart    string `json:"date_start"`
	DateStop     string `json:"date_stop"`
	Spend        number `json:"spend"`
	Purchases    number `json:"purchases"`
	Revenue      number `json:"revenue"`
	Clicks       number `json:"clicks"`
	Impressions  number `json:"impressions"`
}

type SyncResult struct {
	Platforms  int `json:"platforms"`
	Fetched    int `json:"fetched"`
	Stored     int `json:"stored"`
	Updated    int `json:"updated"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

func (e *ETL) Running() bool { return e.running.Load() }

// Run trae los feeds de cada plataforma, enriquece cada fila y la persiste.
// Un feed caído no frena a los demás; los errores vuelven juntos.
func (e *ETL) Run(ctx context.Context, since *time.Time) (SyncResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		e.prom.SyncRejected.Inc()
		return SyncResult{}, ErrSyncInProgress
	}
	defer e.running.Store(false)
	start := time.Now()
	defer func() { e.prom.SyncDuration.Observe(time.Since(start).Seconds()) }()

	platforms := make([]string, 0, len(e.cfg.FeedURLs))
	for p := range e.cfg.FeedURLs {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	var res SyncResult
	var errs []error
	seen := make(map[string]struct{}) // la misma fila repetida dentro de un feed
	for _, platform := range platforms {
		var resp insightResp
		if err := getJSONWithRetry(ctx, e.c, e.bo, e.cfg.FeedURLs[platform], &resp); err != nil {
			e.log.Error("feed fetch failed", slog.String("platform", platform), slog.String("err", err.Error()))
			errs = append(errs, fmt.Errorf("%s feed: %w", platform, err))
			continue
		}
		res.Platforms++
		for _, r := range resp {
			res.Fetched++
			starts, err1 := time.Parse("2006-01-02", strings.TrimSpace(r.DateStart))
			ends, err2 := time.Parse("2006-01-02", strings.TrimSpace(r.DateStop))
			if err1 != nil || err2 != nil || ends.Before(starts) {
				res.Invalid++
				e.prom.SyncedRows.WithLabelValues(platform, "invalid").Inc()
				continue
			}
			if since != nil && dayUTC(ends).Before(dayUTC(*since)) {
				continue
			}
			key := strings.Join([]string{platform, r.AccountID, r.AdID, r.DateStart, r.DateStop}, "|")
			if _, dup := seen[key]; dup {
				res.Duplicates++
				e.prom.SyncedRows.WithLabelValues(platform, "duplicate").Inc()
				continue
			}
			seen[key] = struct{}{}

			row := models.RawPeriodRow{
				Platform:        platform,
				AccountID:       strings.TrimSpace(r.AccountID),
				EntityID:        strings.TrimSpace(r.AdID),
				EntityName:      coalesce(r.AdName, r.AdID),
				CampaignID:      strings.TrimSpace(r.CampaignID),
				CampaignName:    strings.TrimSpace(r.CampaignName),
				ReportingStarts: starts,
				ReportingEnds:   ends,
				Spend:           float64(r.Spend),
				Purchases:       int(r.Purchases),
				Revenue:         float64(r.Revenue),
				Clicks:          int(r.Clicks),
				Impressions:     int(r.Impressions),
			}
			e.Enrich(ctx, &row)
			// un sync posterior trae cifras nuevas de la semana en curso
			if e.st.Upsert(key, row) {
				res.Updated++
				e.prom.SyncedRows.WithLabelValues(platform, "updated").Inc()
				continue
			}
			res.Stored++
			e.prom.SyncedRows.WithLabelValues(platform, "stored").Inc()
		}
	}

	e.log.Info("sync complete",
		slog.Int("platforms", res.Platforms),
		slog.Int("fetched", res.Fetched),
		slog.Int("stored", res.Stored),
		slog.Int("updated", res.Updated),
		slog.Int("duplicates", res.Duplicates),
		slog.Int("invalid", res.Invalid),
		slog.Duration("took", time.Since(start)))
	return res, errors.Join(errs...)
}

// Enrich corre el parser de nombres y ambos categorizadores sobre la fila.
func (e *ETL) Enrich(ctx context.Context, row *models.RawPeriodRow) {
	attrs, mode := e.parser.ParseWithMode(row.EntityName, row.CampaignName)
	e.prom.AdNamesParsed.WithLabelValues(string(mode)).Inc()
	row.Attributes = attrs

	cat := e.cat.Classify(ctx, row.EntityID, row.EntityName)
	e.prom.Categorizations.WithLabelValues(models.RuleSetCategory, string(cat.Source)).Inc()
	row.Category = cat.Category

	typ := e.typer.Classify(ctx, row.CampaignID, row.CampaignName)
	e.prom.Categorizations.WithLabelValues(models.RuleSetCampaignType, string(typ.Source)).Inc()
	row.CampaignType = typ.Category
}

func coalesce(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return strings.TrimSpace(def)
	}
	return s
}
func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
