package adname

import "regexp"

type keyword struct {
	re        *regexp.Regexp
	canonical string
}

func kw(pattern, canonical string) keyword {
	return keyword{re: regexp.MustCompile(`\b` + pattern + `\b`), canonical: canonical}
}

// orden importa: primer match gana
var categoryKeywords = []keyword{
	kw(`tumbling`, "Tumbling Mat"),
	kw(`play ?mats?`, "Play Mat"),
	kw(`(?:standing|desk) ?mats?`, "Standing Mat"),
	kw(`wall ?pads?`, "Wall Pad"),
	kw(`crash ?pads?`, "Crash Pad"),
	kw(`multi`, "Multi"),
}

var products = map[string]string{
	"folklore":  "Folklore",
	"meadow":    "Meadow",
	"prism":     "Prism",
	"horizon":   "Horizon",
	"terrazzo":  "Terrazzo",
	"botanical": "Botanical",
	"classic":   "Classic",
	"safari":    "Safari",
}

var colors = map[string]string{
	"fog":      "Fog",
	"sand":     "Sand",
	"sage":     "Sage",
	"blush":    "Blush",
	"charcoal": "Charcoal",
	"oat":      "Oat",
	"cloud":    "Cloud",
	"ivory":    "Ivory",
	"clay":     "Clay",
	"moss":     "Moss",
	"slate":    "Slate",
	"dune":     "Dune",
}

// "brand ugc" antes que "brand" o "ugc"
var contentTypes = []struct{ needle, canonical string }{
	{"whitelist", "Whitelist"},
	{"brand ugc", "Brand UGC"},
	{"ugc", "UGC"},
	{"influencer", "Influencer"},
	{"testimonial", "Testimonial"},
	{"founder", "Founder"},
	{"brand", "Brand"},
}

// carousel > collection > static > gif > video > image
var formats = []struct{ needle, canonical string }{
	{"carousel", "Carousel"},
	{"collection", "Collection"},
	{"static", "Static"},
	{"gif", "GIF"},
	{"video", "Video"},
	{"image", "Image"},
}

// clave: handle en minúsculas sin separadores
var handles = map[string]string{
	"brookeknuth":      "BrookeKnuth",
	"hannahhomeschool": "HannahHomeschool",
	"kaylaoutdoors":    "KaylaOutdoors",
	"mollymovement":    "MollyMovement",
	"thetumblecoach":   "TheTumbleCoach",
}

var (
	datePattern    = regexp.MustCompile(`^\s*\d{1,2}/\d{1,2}/\d{4}`)
	leadingDate    = regexp.MustCompile(`^\s*\d{1,2}/\d{1,2}/\d{2,4}\s*(?:-\s*)?`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
	minColorAffix  = 4
	incrementality = "incrementality"
)
