package scraper

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeNow is indirected for tests.
var timeNow = time.Now

var (
	absoluteDateRe = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})(?:\s*(?:as)?\s*(\d{2}):(\d{2}))?`)
	relativeDateRe = regexp.MustCompile(`ha\s+(\d+)\s+(minuto|hora|dia|semana|mes|ano)s?`)
)

// parseComplaintDate turns the site's date strings into a concrete time.
// The target renders dates in three shapes: ISO timestamps inside embedded
// JSON, absolute pt-BR "02/01/2006 as 15:04" strings, and relative phrases
// like "ha 3 dias". Unparseable input falls back to the current time rather
// than a zero value, since every stored record needs a usable date.
func parseComplaintDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return timeNow()
	}
	if t, ok := parseISODate(s); ok {
		return t
	}
	folded := foldText(s)
	if t, ok := parseRelativeDate(folded); ok {
		return t
	}
	if t, ok := parseAbsoluteDate(folded); ok {
		return t
	}
	slog.Warn("Unparseable complaint date, using current time", "raw", raw)
	return timeNow()
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAbsoluteDate(folded string) (time.Time, bool) {
	m := absoluteDateRe.FindStringSubmatch(folded)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), true
}

func parseRelativeDate(folded string) (time.Time, bool) {
	now := timeNow()
	switch {
	case strings.Contains(folded, "agora"), strings.Contains(folded, "hoje"):
		return now, true
	case strings.Contains(folded, "ontem"):
		return now.AddDate(0, 0, -1), true
	}
	m := relativeDateRe.FindStringSubmatch(folded)
	if m == nil {
		return time.Time{}, false
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "minuto":
		return now.Add(-time.Duration(n) * time.Minute), true
	case "hora":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "dia":
		return now.AddDate(0, 0, -n), true
	case "semana":
		return now.AddDate(0, 0, -7*n), true
	case "mes":
		return now.AddDate(0, -n, 0), true
	case "ano":
		return now.AddDate(-n, 0, 0), true
	}
	return time.Time{}, false
}
