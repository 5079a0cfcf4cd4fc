package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/kabanhq/kaban/internal/kerrors"
)

// compactDurationRe matches the exact mini-language forms the GLOSSARY
// names explicitly: 1h, 1d, 1w, Nm (months), optionally signed.
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// dateParser is a standalone state machine for Kaban's relative-date
// mini-language (§4.8/GLOSSARY), used by the task service for due
// dates. It tries, in order: strict ISO (YYYY-MM-DD), the
// compact duration grammar (1h/1d/1w/Nm/Ny, optionally signed), and
// finally a natural-language parse ("today", "next tuesday", "in 3
// days") delegated to a when.Parser instance seeded with the English
// rule set.
type dateParser struct {
	w *when.Parser
}

var defaultParser = newDateParser()

func newDateParser() *dateParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &dateParser{w: w}
}

// ParseDate interprets s against now using ISO, compact-duration, or
// natural-language rules, in that order. now is the reference point for
// every relative form; pass time.Now() in production and a frozen value
// in tests.
func ParseDate(s string, now time.Time) (time.Time, error) {
	return defaultParser.parse(s, now)
}

func (p *dateParser) parse(s string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, kerrors.New(kerrors.Validation, "empty date")
	}

	if t, ok := parseISODate(trimmed); ok {
		return t, nil
	}

	if t, ok := parseCompactDuration(trimmed, now); ok {
		return t, nil
	}

	switch strings.ToLower(trimmed) {
	case "today":
		return truncateToDay(now), nil
	case "tomorrow":
		return truncateToDay(now.AddDate(0, 0, 1)), nil
	case "yesterday":
		return truncateToDay(now.AddDate(0, 0, -1)), nil
	}

	r, err := p.w.Parse(trimmed, now)
	if err != nil {
		return time.Time{}, kerrors.Wrap(kerrors.Validation, err, fmt.Sprintf("could not parse date %q", s))
	}
	if r == nil {
		return time.Time{}, kerrors.Newf(kerrors.Validation, "could not parse date %q", s)
	}
	return r.Time, nil
}

func parseISODate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseCompactDuration handles the exact forms named in the GLOSSARY:
// 1h, 1d, 1w, Nm, Ny, each optionally preceded by + or - (default +).
func parseCompactDuration(s string, now time.Time) (time.Time, bool) {
	m := compactDurationRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	sign := 1
	if m[1] == "-" {
		sign = -1
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}
	n *= sign

	switch m[3] {
	case "h":
		return now.Add(time.Duration(n) * time.Hour), true
	case "d":
		return now.AddDate(0, 0, n), true
	case "w":
		return now.AddDate(0, 0, n*7), true
	case "m":
		return now.AddDate(0, n, 0), true
	case "y":
		return now.AddDate(n, 0, 0), true
	default:
		return time.Time{}, false
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
