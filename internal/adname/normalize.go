package adname

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AngelCh415/ads-insights/internal/models"
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// titleCase no comparte el Caser: no es seguro entre goroutines.
func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}

func NormalizeCategory(s string) string {
	l := norm(s)
	switch {
	case l == "":
		return ""
	case strings.Contains(l, "tumbling"):
		return "Tumbling Mat"
	case strings.Contains(l, "play") && strings.Contains(l, "mat") &&
		!strings.Contains(l, "standing") && !strings.Contains(l, "desk"):
		return "Play Mat"
	case l == "multi":
		return "Multi"
	case (strings.Contains(l, "standing") || strings.Contains(l, "desk")) && strings.Contains(l, "mat"):
		return "Standing Mat"
	}
	return titleCase(s)
}

func NormalizeContentType(s string) string {
	l := norm(s)
	if l == "" {
		return ""
	}
	for _, c := range contentTypes {
		if strings.Contains(l, c.needle) {
			return c.canonical
		}
	}
	return titleCase(s)
}

func NormalizeFormat(s string) string {
	l := norm(s)
	if l == "" {
		return ""
	}
	for _, f := range formats {
		if strings.Contains(l, f.needle) {
			return f.canonical
		}
	}
	return titleCase(s)
}

func NormalizeHandle(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "@")
	if s == "" {
		return ""
	}
	if h, ok := handles[compact(s)]; ok {
		return h
	}
	return titleCase(s)
}

func normalizeProduct(s string) string { return fromVocab(products, s) }
func normalizeColor(s string) string   { return fromVocab(colors, s) }

func fromVocab(vocab map[string]string, s string) string {
	if v, ok := vocab[norm(s)]; ok {
		return v
	}
	return titleCase(s)
}

func compact(s string) string { return nonAlnum.ReplaceAllString(strings.ToLower(s), "") }

// CampaignOptimization depende sólo del nombre de campaña.
func CampaignOptimization(campaignName string) string {
	if strings.Contains(strings.ToLower(campaignName), incrementality) {
		return models.OptimizationIncremental
	}
	return models.OptimizationStandard
}
