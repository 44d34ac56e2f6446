package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/ads-insights/internal/adname"
	"github.com/AngelCh415/ads-insights/internal/aggregate"
	"github.com/AngelCh415/ads-insights/internal/categorize"
	"github.com/AngelCh415/ads-insights/internal/ingest"
	"github.com/AngelCh415/ads-insights/internal/metrics"
	"github.com/AngelCh415/ads-insights/internal/models"
	"github.com/AngelCh415/ads-insights/internal/scheduler"
	"github.com/AngelCh415/ads-insights/internal/store"
	"github.com/AngelCh415/ads-insights/internal/utils"
)

// RuleAdmin es el store de reglas visto desde la API de mantenimiento.
type RuleAdmin interface {
	categorize.RuleSource
	UpsertRule(ctx context.Context, r models.CategoryRule) (models.CategoryRule, error)
	SetOverride(ctx context.Context, o models.CategoryOverride) error
	DeleteOverride(ctx context.Context, ruleSet, entityID string) error
}

type JobLister interface {
	Jobs() []scheduler.JobInfo
}

type Deps struct {
	ETL     *ingest.ETL
	Reports *metrics.Service
	Prom    *metrics.Collectors
	Parser  *adname.Parser
	Cat     *categorize.Categorizer
	Typer   *categorize.Categorizer
	Rules   RuleAdmin
	Jobs    JobLister // nil sin SYNC_SCHEDULE
}

func NewRouter(log *slog.Logger, d Deps) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", d.Prom.Handler())

	mux.Get("/jobs", func(w http.ResponseWriter, r *http.Request) {
		jobs := []scheduler.JobInfo{}
		if d.Jobs != nil {
			jobs = d.Jobs.Jobs()
		}
		writeJSON(w, map[string]any{"sync_running": d.ETL.Running(), "jobs": jobs})
	})

	mux.Post("/ingest/run", func(w http.ResponseWriter, r *http.Request) {
		var since *time.Time
		if q := r.URL.Query().Get("since"); q != "" {
			t, err := time.Parse("2006-01-02", q)
			if err != nil {
				http.Error(w, "bad since (YYYY-MM-DD)", 400)
				return
			}
			since = &t
		}
		res, err := d.ETL.Run(r.Context(), since)
		switch {
		case errors.Is(err, ingest.ErrSyncInProgress):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSONStatus(w, http.StatusAccepted, res)
	})

	mux.Post("/export/run", func(w http.ResponseWriter, r *http.Request) {
		from, to, err := dateRange(r)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		n, err := d.ETL.ExportWeek(r.Context(), from, to)
		switch {
		case errors.Is(err, ingest.ErrSinkNotConfigured):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]any{"exported": n})
	})

	mux.Get("/export/xlsx", func(w http.ResponseWriter, r *http.Request) {
		rows, err := d.Reports.Rows(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="ads-momentum.xlsx"`)
		if err := ingest.WriteWorkbook(w, rows); err != nil {
			log.Error("xlsx export failed", slog.String("err", err.Error()), slog.String("rid", utils.RID(r.Context())))
		}
	})

	mux.Get("/parse", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		attrs, mode := d.Parser.ParseWithMode(q.Get("ad_name"), q.Get("campaign_name"))
		d.Prom.AdNamesParsed.WithLabelValues(string(mode)).Inc()
		writeJSON(w, attrs)
	})

	mux.Get("/categorize", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id, name := q.Get("entity_id"), q.Get("entity_name")
		cat := d.Cat.Classify(r.Context(), id, name)
		typ := d.Typer.Classify(r.Context(), id, name)
		writeJSON(w, map[string]any{
			"category":             cat.Category,
			"category_source":      cat.Source,
			"campaign_type":        typ.Category,
			"campaign_type_source": typ.Source,
		})
	})

	mux.Route("/reports", func(rt chi.Router) {
		rt.Get("/momentum", func(w http.ResponseWriter, r *http.Request) {
			views, err := d.Reports.QueryMomentum(r.URL.Query())
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			writeJSON(w, views)
		})
		rt.Get("/monthly", func(w http.ResponseWriter, r *http.Request) {
			views, err := d.Reports.QueryMonthly(r.URL.Query())
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			writeJSON(w, views)
		})
		rt.Get("/pivot", func(w http.ResponseWriter, r *http.Request) {
			views, err := d.Reports.QueryPivot(r.URL.Query())
			if errors.Is(err, aggregate.ErrUnknownDimension) {
				http.Error(w, fmt.Sprintf("%v (one of %s)", err, strings.Join(aggregate.Dimensions(), ", ")), 400)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			writeJSON(w, views)
		})
	})

	mux.Route("/rules/{ruleSet}", func(rt chi.Router) {
		rt.Use(knownRuleSet)
		rt.Get("/", func(w http.ResponseWriter, r *http.Request) {
			rules, err := d.Rules.ActiveRules(r.Context(), chi.URLParam(r, "ruleSet"))
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			writeJSON(w, categorize.Ordered(rules))
		})
		rt.Put("/", func(w http.ResponseWriter, r *http.Request) {
			var rule models.CategoryRule
			if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
				http.Error(w, "bad json", 400)
				return
			}
			rule.RuleSet = chi.URLParam(r, "ruleSet")
			if strings.TrimSpace(rule.RuleName) == "" || strings.TrimSpace(rule.Pattern) == "" || strings.TrimSpace(rule.Category) == "" {
				http.Error(w, "rule_name, pattern and category required", 400)
				return
			}
			saved, err := d.Rules.UpsertRule(r.Context(), rule)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			writeJSON(w, saved)
		})
	})

	mux.Route("/overrides/{ruleSet}/{entityID}", func(rt chi.Router) {
		rt.Use(knownRuleSet)
		rt.Put("/", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Category  string `json:"category"`
				CreatedBy string `json:"created_by"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Category) == "" {
				http.Error(w, "category required", 400)
				return
			}
			o := models.CategoryOverride{
				RuleSet:   chi.URLParam(r, "ruleSet"),
				EntityID:  chi.URLParam(r, "entityID"),
				Category:  strings.TrimSpace(body.Category),
				CreatedBy: body.CreatedBy,
			}
			if err := d.Rules.SetOverride(r.Context(), o); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
		rt.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			err := d.Rules.DeleteOverride(r.Context(), chi.URLParam(r, "ruleSet"), chi.URLParam(r, "entityID"))
			switch {
			case errors.Is(err, store.ErrNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			case err != nil:
				http.Error(w, err.Error(), 500)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return mux
}

func knownRuleSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch chi.URLParam(r, "ruleSet") {
		case models.RuleSetCategory, models.RuleSetCampaignType:
			next.ServeHTTP(w, r)
		default:
			http.Error(w, "unknown rule set", http.StatusNotFound)
		}
	})
}

// dateRange lee from/to opcionales (YYYY-MM-DD).
func dateRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		if from, err = time.Parse("2006-01-02", s); err != nil {
			return from, to, errors.New("bad from (YYYY-MM-DD)")
		}
	}
	if s := q.Get("to"); s != "" {
		if to, err = time.Parse("2006-01-02", s); err != nil {
			return from, to, errors.New("bad to (YYYY-MM-DD)")
		}
	}
	return from, to, nil
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
