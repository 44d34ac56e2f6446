// Package scheduler corre el sync de plataformas con expresiones cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// New arma un scheduler en loc; cada corrida recibe un ctx con timeout.
func New(loc *time.Location, timeout time.Duration, log *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Scheduler{
		// una corrida lenta no se apila con la siguiente
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log,
		timeout: timeout,
		jobs:    make(map[string]cron.EntryID),
	}
}

// AddJob registra job bajo name. schedule: "0 6 * * 1" o descriptores como "@daily".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	s.mu.Lock()
	if old, ok := s.jobs[name]; ok {
		s.cron.Remove(old)
	}
	s.jobs[name] = id
	s.mu.Unlock()
	s.log.Info("scheduler job added", slog.String("job", name), slog.String("schedule", schedule))
	return nil
}

// RunNow ejecuta job fuera de agenda con el mismo timeout y logging.
func (s *Scheduler) RunNow(name string, job Job) error {
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Info("scheduler job started", slog.String("job", name))
	if err := job(ctx); err != nil {
		s.log.Error("scheduler job failed", slog.String("job", name), slog.String("err", err.Error()))
		return err
	}
	s.log.Info("scheduler job done", slog.String("job", name), slog.Duration("took", time.Since(start)))
	return nil
}

type JobInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run"`
}

func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for name, id := range s.jobs {
		e := s.cron.Entry(id)
		out = append(out, JobInfo{Name: name, NextRun: e.Next, LastRun: e.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) Start() {
	s.log.Info("scheduler starting")
	s.cron.Start()
}

// Stop frena la agenda; el ctx devuelto se cierra cuando terminan las corridas en curso.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}
