// Package adname extrae atributos estructurados del nombre libre de un anuncio.
package adname

import (
	"sort"
	"strings"
	"time"

	"github.com/AngelCh415/ads-insights/internal/models"
)

const (
	separator             = " - "
	structuredMinSegments = 7
)

type Mode string

const (
	ModeEmpty      Mode = "empty"
	ModeStructured Mode = "structured"
	ModeFallback   Mode = "fallback"
)

type Parser struct {
	now func() time.Time
}

type Option func(*Parser)

// WithClock fija el reloj usado para days_live.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

func New(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

var std = New()

// Parse nunca falla: campos no detectados quedan en "" / 0.
func Parse(adName, campaignName string) models.ParsedAdAttributes {
	return std.Parse(adName, campaignName)
}

func (p *Parser) Parse(adName, campaignName string) models.ParsedAdAttributes {
	out, _ := p.ParseWithMode(adName, campaignName)
	return out
}

func (p *Parser) ParseWithMode(adName, campaignName string) (models.ParsedAdAttributes, Mode) {
	out := models.ParsedAdAttributes{CampaignOptimization: CampaignOptimization(campaignName)}
	if strings.TrimSpace(adName) == "" {
		return out, ModeEmpty
	}
	if seg, ok := splitSegments(adName); ok {
		p.fromSegments(&out, seg, adName)
		return out, ModeStructured
	}
	p.fromHeuristics(&out, adName)
	return out, ModeFallback
}

// segments es la forma "fecha - categoría - producto - color - tipo - handle - formato - nombre...".
type segments struct {
	Date        string
	Category    string
	Product     string
	Color       string
	ContentType string
	Handle      string
	Format      string
	Rest        []string
}

func splitSegments(adName string) (segments, bool) {
	parts := strings.Split(adName, separator)
	if len(parts) < structuredMinSegments {
		return segments{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return segments{
		Date:        parts[0],
		Category:    parts[1],
		Product:     parts[2],
		Color:       parts[3],
		ContentType: parts[4],
		Handle:      parts[5],
		Format:      parts[6],
		Rest:        parts[7:],
	}, true
}

func (s segments) cleanName() string {
	if name := strings.TrimSpace(strings.Join(s.Rest, separator)); name != "" {
		return name
	}
	return s.Format
}

func (p *Parser) fromSegments(out *models.ParsedAdAttributes, seg segments, raw string) {
	guard(func() { p.setLaunch(out, seg.Date) })
	field(&out.Category, func() string { return NormalizeCategory(seg.Category) })
	field(&out.Product, func() string { return normalizeProduct(seg.Product) })
	field(&out.Color, func() string { return normalizeColor(seg.Color) })
	field(&out.ContentType, func() string { return NormalizeContentType(seg.ContentType) })
	field(&out.Handle, func() string { return NormalizeHandle(seg.Handle) })
	field(&out.Format, func() string { return NormalizeFormat(seg.Format) })
	out.AdNameClean = raw
	field(&out.AdNameClean, seg.cleanName)
}

func (p *Parser) fromHeuristics(out *models.ParsedAdAttributes, raw string) {
	lower := strings.ToLower(raw)
	words := splitWords(lower)

	guard(func() {
		if m := datePattern.FindString(lower); m != "" {
			p.setLaunch(out, m)
		}
	})
	field(&out.Category, func() string { return detectCategory(lower) })
	field(&out.Product, func() string { return detectWord(products, words) })
	field(&out.Color, func() string { return detectColor(words) })
	field(&out.ContentType, func() string { return detectFirst(contentTypes, lower) })
	field(&out.Format, func() string { return detectFirst(formats, lower) })
	field(&out.Handle, func() string { return detectHandle(lower) })
	out.AdNameClean = raw
	field(&out.AdNameClean, func() string { return stripLeadingDate(raw) })
}

func (p *Parser) setLaunch(out *models.ParsedAdAttributes, token string) {
	d, ok := ParseDate(token)
	if !ok {
		return
	}
	out.LaunchDate = &d
	out.DaysLive = daysBetween(d, p.now())
}

// field deja el valor por defecto si el detector entra en pánico;
// el resto de los campos se sigue llenando.
func field(dst *string, detect func() string) {
	guard(func() { *dst = detect() })
}

func guard(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func splitWords(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func detectCategory(lower string) string {
	for _, k := range categoryKeywords {
		if k.re.MatchString(lower) {
			return k.canonical
		}
	}
	return ""
}

func detectWord(vocab map[string]string, words []string) string {
	for _, w := range words {
		if v, ok := vocab[w]; ok {
			return v
		}
	}
	return ""
}

var colorKeys = sortedKeys(colors)

// palabra exacta primero; luego prefijo/sufijo ("fogvideo") para colores de 4+ letras
func detectColor(words []string) string {
	if c := detectWord(colors, words); c != "" {
		return c
	}
	for _, w := range words {
		for _, k := range colorKeys {
			if len(k) < minColorAffix || len(w) <= len(k) {
				continue
			}
			if strings.HasPrefix(w, k) || strings.HasSuffix(w, k) {
				return colors[k]
			}
		}
	}
	return ""
}

func detectFirst(vocab []struct{ needle, canonical string }, lower string) string {
	for _, v := range vocab {
		if strings.Contains(lower, v.needle) {
			return v.canonical
		}
	}
	return ""
}

var handleKeys = sortedKeys(handles)

func detectHandle(lower string) string {
	c := compact(lower)
	for _, k := range handleKeys {
		if strings.Contains(c, k) {
			return handles[k]
		}
	}
	return ""
}

func stripLeadingDate(raw string) string {
	if s := strings.TrimSpace(leadingDate.ReplaceAllString(raw, "")); s != "" {
		return s
	}
	return strings.TrimSpace(raw)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
