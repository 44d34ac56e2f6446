package store

import (
	"context"

	"github.com/AngelCh415/ads-insights/internal/models"
)

// RuleWriter inserta una regla sólo si (rule_set, rule_name) no existe;
// devuelve false cuando ya estaba.
type RuleWriter interface {
	SeedRule(ctx context.Context, r models.CategoryRule) (bool, error)
}

func DefaultRules() []models.CategoryRule {
	cat := func(name, pattern, category string, prio int) models.CategoryRule {
		return models.CategoryRule{RuleSet: models.RuleSetCategory, RuleName: name, Pattern: pattern, Category: category, Priority: prio, IsActive: true}
	}
	typ := func(name, pattern, label string, prio int) models.CategoryRule {
		return models.CategoryRule{RuleSet: models.RuleSetCampaignType, RuleName: name, Pattern: pattern, Category: label, Priority: prio, IsActive: true}
	}
	return []models.CategoryRule{
		cat("tumbling-mat", "tumbling", "Tumbling Mat", 100),
		cat("play-mat", "play mat", "Play Mat", 90),
		cat("playmat", "playmat", "Play Mat", 90),
		cat("standing-mat", "standing mat", "Standing Mat", 80),
		cat("wall-pad", "wall pad", "Wall Pad", 70),
		cat("crash-pad", "crash pad", "Crash Pad", 70),
		cat("multi", "multi", "Multi", 10),

		typ("youtube", "YouTube", "YouTube", 100),
		typ("non-brand", "Non-Brand", "Non-Brand", 90),
		typ("nb-search", "NB - Search", "Non-Brand", 85),
		typ("brand", "Brand", "Brand", 50),
	}
}

// SeedDefaults carga las DefaultRules que falten; no pisa reglas editadas a mano.
func SeedDefaults(ctx context.Context, w RuleWriter) error {
	for _, r := range DefaultRules() {
		if _, err := w.SeedRule(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
