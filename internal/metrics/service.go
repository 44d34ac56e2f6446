package metrics

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/ads-insights/internal/aggregate"
	"github.com/AngelCh415/ads-insights/internal/models"
	"github.com/AngelCh415/ads-insights/internal/store"
)

type Service struct{ st *store.MemoryStore }

func NewService(st *store.MemoryStore) *Service { return &Service{st: st} }
func norm(s string) string                      { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

func inSet(set map[string]struct{}, v string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[norm(v)]
	return ok
}

// Rows aplica los filtros comunes: from, to, category, platform, campaign_type.
func (s *Service) Rows(v url.Values) ([]models.RawPeriodRow, error) {
	from, err := parseDay(v.Get("from"))
	if err != nil {
		return nil, err
	}
	to, err := parseDay(v.Get("to"))
	if err != nil {
		return nil, err
	}
	cats := csvSet(v.Get("category"))
	platforms := csvSet(v.Get("platform"))
	types := csvSet(v.Get("campaign_type"))

	return s.st.Query(from, to, func(r models.RawPeriodRow) bool {
		return inSet(cats, r.Category) && inSet(platforms, r.Platform) && inSet(types, r.CampaignType)
	}), nil
}

func (s *Service) QueryMomentum(v url.Values) ([]models.EntityMomentumView, error) {
	rows, err := s.Rows(v)
	if err != nil {
		return nil, err
	}
	views := aggregate.Views(aggregate.Ranked(aggregate.Weekly(rows)))
	limit, offset := clampLimitOffset(atoiDef(v.Get("limit"), 100), atoiDef(v.Get("offset"), 0), len(views))
	return paginate(views, limit, offset), nil
}

func (s *Service) QueryMonthly(v url.Values) ([]models.MonthlyView, error) {
	rows, err := s.Rows(v)
	if err != nil {
		return nil, err
	}
	return aggregate.Monthly(rows), nil
}

func (s *Service) QueryPivot(v url.Values) ([]models.PivotView, error) {
	rows, err := s.Rows(v)
	if err != nil {
		return nil, err
	}
	dim := v.Get("dimension")
	if dim == "" {
		dim = "category"
	}
	return aggregate.Pivot(rows, dim)
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (YYYY-MM-DD)", s)
	}
	return t, nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // tope sano
	if offset > n {
		offset = n
	}
	return limit, offset
}
