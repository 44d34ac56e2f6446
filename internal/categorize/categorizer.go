// Package categorize asigna una etiqueta a una campaña o anuncio: override
// manual primero, luego reglas por prioridad descendente, luego el default.
package categorize

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/AngelCh415/ads-insights/internal/models"
)

type RuleSource interface {
	Override(ctx context.Context, ruleSet, entityID string) (models.CategoryOverride, bool, error)
	ActiveRules(ctx context.Context, ruleSet string) ([]models.CategoryRule, error)
}

type Source string

const (
	SourceOverride Source = "override"
	SourceRule     Source = "rule"
	SourceDefault  Source = "default"
)

type Result struct {
	Category string `json:"category"`
	Source   Source `json:"source"`
	RuleName string `json:"rule_name,omitempty"`
}

type matchFunc func(pattern, name string) bool

type Categorizer struct {
	src      RuleSource
	log      *slog.Logger
	ruleSet  string
	fallback string
	match    matchFunc
}

// New devuelve el categorizador de categorías de producto (substring, sin distinguir mayúsculas).
func New(src RuleSource, log *slog.Logger) *Categorizer {
	return &Categorizer{src: src, log: log, ruleSet: models.RuleSetCategory, fallback: models.DefaultCategory, match: containsFold}
}

// NewCampaignTyper clasifica campañas en Brand / Non-Brand / YouTube.
func NewCampaignTyper(src RuleSource, log *slog.Logger) *Categorizer {
	return &Categorizer{src: src, log: log, ruleSet: models.RuleSetCampaignType, fallback: models.DefaultCampaignType, match: phraseOrWord}
}

func (c *Categorizer) Categorize(ctx context.Context, entityID, entityName string) string {
	return c.Classify(ctx, entityID, entityName).Category
}

// Classify nunca propaga errores del store: se tratan como "sin match".
func (c *Categorizer) Classify(ctx context.Context, entityID, entityName string) Result {
	if entityID != "" {
		o, ok, err := c.src.Override(ctx, c.ruleSet, entityID)
		switch {
		case err != nil:
			c.log.Warn("override lookup failed", slog.String("rule_set", c.ruleSet), slog.String("entity_id", entityID), slog.String("err", err.Error()))
		case ok && strings.TrimSpace(o.Category) != "":
			return Result{Category: o.Category, Source: SourceOverride}
		}
	}

	rules, err := c.src.ActiveRules(ctx, c.ruleSet)
	if err != nil {
		c.log.Warn("rule lookup failed", slog.String("rule_set", c.ruleSet), slog.String("err", err.Error()))
		return Result{Category: c.fallback, Source: SourceDefault}
	}
	for _, r := range Ordered(rules) {
		if c.match(r.Pattern, entityName) {
			return Result{Category: r.Category, Source: SourceRule, RuleName: r.RuleName}
		}
	}
	return Result{Category: c.fallback, Source: SourceDefault}
}

// Ordered filtra reglas activas y las ordena por prioridad descendente;
// empates conservan el orden original.
func Ordered(rules []models.CategoryRule) []models.CategoryRule {
	out := make([]models.CategoryRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive && strings.TrimSpace(r.Pattern) != "" {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

func containsFold(pattern, name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(strings.TrimSpace(pattern)))
}

// "Brand" no debe matchear dentro de "Non-Brand": el guion cuenta como parte de la palabra.
var wordPatterns sync.Map

func phraseOrWord(pattern, name string) bool {
	pattern = strings.TrimSpace(pattern)
	if strings.Contains(pattern, " - ") {
		return containsFold(pattern, name)
	}
	re, ok := wordPatterns.Load(pattern)
	if !ok {
		re, _ = wordPatterns.LoadOrStore(pattern,
			regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}-])`+regexp.QuoteMeta(pattern)+`(?:$|[^\p{L}\p{N}-])`))
	}
	return re.(*regexp.Regexp).MatchString(name)
}
