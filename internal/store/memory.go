package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AngelCh415/ads-insights/internal/models"
)

var ErrNotFound = errors.New("not found")

type MemoryStore struct {
	mu        sync.RWMutex
	rows      []models.RawPeriodRow
	rules     []models.CategoryRule
	overrides map[string]models.CategoryOverride // ruleSet|entityID
	byKey     map[string]int                     // clave de sync -> índice en rows
	nextID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		overrides: make(map[string]models.CategoryOverride),
		byKey:     make(map[string]int),
	}
}

func (s *MemoryStore) Insert(r models.RawPeriodRow) {
	r = clean(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
}

// Upsert reemplaza la fila guardada bajo key (re-sync de una semana en curso)
// o la agrega; devuelve true si reemplazó.
func (s *MemoryStore) Upsert(key string, r models.RawPeriodRow) bool {
	r = clean(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byKey[key]; ok {
		s.rows[i] = r
		return true
	}
	s.byKey[key] = len(s.rows)
	s.rows = append(s.rows, r)
	return false
}

func clean(r models.RawPeriodRow) models.RawPeriodRow {
	r.ReportingStarts = day(r.ReportingStarts)
	r.ReportingEnds = day(r.ReportingEnds)
	r.Spend = maxf(r.Spend)
	r.Revenue = maxf(r.Revenue)
	r.Purchases = max0(r.Purchases)
	r.Clicks = max0(r.Clicks)
	r.Impressions = max0(r.Impressions)
	return r
}

func (s *MemoryStore) All() []models.RawPeriodRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RawPeriodRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Query devuelve filas cuyo periodo empieza en [from, to]; fechas cero no filtran.
func (s *MemoryStore) Query(from, to time.Time, f func(models.RawPeriodRow) bool) []models.RawPeriodRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.RawPeriodRow
	for _, r := range s.rows {
		if !from.IsZero() && r.ReportingStarts.Before(day(from)) {
			continue
		}
		if !to.IsZero() && r.ReportingStarts.After(day(to)) {
			continue
		}
		if f == nil || f(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *MemoryStore) UpsertRule(_ context.Context, r models.CategoryRule) (models.CategoryRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].RuleSet == r.RuleSet && s.rules[i].RuleName == r.RuleName {
			r.ID = s.rules[i].ID
			s.rules[i] = r
			return r, nil
		}
	}
	s.nextID++
	r.ID = s.nextID
	s.rules = append(s.rules, r)
	return r, nil
}

func (s *MemoryStore) SeedRule(_ context.Context, r models.CategoryRule) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.rules {
		if cur.RuleSet == r.RuleSet && cur.RuleName == r.RuleName {
			return false, nil
		}
	}
	s.nextID++
	r.ID = s.nextID
	s.rules = append(s.rules, r)
	return true, nil
}

func (s *MemoryStore) ActiveRules(_ context.Context, ruleSet string) ([]models.CategoryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CategoryRule
	for _, r := range s.rules {
		if r.RuleSet == ruleSet && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetOverride(_ context.Context, o models.CategoryOverride) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[overrideKey(o.RuleSet, o.EntityID)] = o
	return nil
}

func (s *MemoryStore) DeleteOverride(_ context.Context, ruleSet, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := overrideKey(ruleSet, entityID)
	if _, ok := s.overrides[k]; !ok {
		return ErrNotFound
	}
	delete(s.overrides, k)
	return nil
}

func (s *MemoryStore) Override(_ context.Context, ruleSet, entityID string) (models.CategoryOverride, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.overrides[overrideKey(ruleSet, entityID)]
	return o, ok, nil
}

func overrideKey(ruleSet, entityID string) string { return ruleSet + "|" + entityID }

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
func maxf(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
