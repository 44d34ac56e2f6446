package adname

import (
	"strings"
	"time"
)

// Orden de prueba fijo: una fecha ambigua (01/02/03) se resuelve con el
// primer layout que parsea.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2/1/2006",
	"2/1/06",
	"2006-01-02",
	"1-2-2006",
	"1-2-06",
}

func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func daysBetween(from, now time.Time) int {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
