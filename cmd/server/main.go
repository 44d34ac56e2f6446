package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AngelCh415/ads-insights/internal/adname"
	"github.com/AngelCh415/ads-insights/internal/categorize"
	"github.com/AngelCh415/ads-insights/internal/config"
	"github.com/AngelCh415/ads-insights/internal/httpx"
	"github.com/AngelCh415/ads-insights/internal/ingest"
	"github.com/AngelCh415/ads-insights/internal/metrics"
	"github.com/AngelCh415/ads-insights/internal/scheduler"
	"github.com/AngelCh415/ads-insights/internal/store"
)

func main() {
	// .env es opcional (dev local)
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.NewMemoryStore()
	var rules httpx.RuleAdmin = st
	var seed store.RuleWriter = st
	if cfg.RulesDBPath != "" {
		db, err := store.NewSQLiteStore(cfg.RulesDBPath)
		if err != nil {
			logger.Error("open rules db", slog.String("path", cfg.RulesDBPath), slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		rules, seed = db, db
	}
	if err := store.SeedDefaults(ctx, seed); err != nil {
		logger.Error("seed rules", slog.String("err", err.Error()))
		os.Exit(1)
	}

	prom := metrics.NewCollectors()
	cat := categorize.New(rules, logger)
	typer := categorize.NewCampaignTyper(rules, logger)
	parser := adname.New()

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	etl := ingest.NewETL(cl, st, logger, cfg, cat, typer, prom, ingest.WithParser(parser))
	mSvc := metrics.NewService(st)

	var sched *scheduler.Scheduler
	var jobs httpx.JobLister
	if cfg.SyncSchedule != "" {
		sched = scheduler.New(time.UTC, cfg.SyncTimeout, logger)
		syncJob := func(ctx context.Context) error {
			_, err := etl.Run(ctx, nil)
			if errors.Is(err, ingest.ErrSyncInProgress) {
				return nil
			}
			return err
		}
		if err := sched.AddJob("platform-sync", cfg.SyncSchedule, syncJob); err != nil {
			logger.Error("bad SYNC_SCHEDULE", slog.String("err", err.Error()))
			os.Exit(1)
		}
		jobs = sched
		sched.Start()
		// el store de filas arranca vacío: primer sync sin esperar al cron
		go sched.RunNow("platform-sync", syncJob)
	}

	r := httpx.NewRouter(logger, httpx.Deps{
		ETL:     etl,
		Reports: mSvc,
		Prom:    prom,
		Parser:  parser,
		Cat:     cat,
		Typer:   typer,
		Rules:   rules,
		Jobs:    jobs,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port), slog.Int("feeds", len(cfg.FeedURLs)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("err", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if sched != nil {
		select {
		case <-sched.Stop().Done():
		case <-shutdownCtx.Done():
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.String("err", err.Error()))
	}
}
