// Package dates resolves the timestamp formats the scraping source emits
// into one canonical UTC time.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// twitterEpochMs is the platform epoch for snowflake-style IDs, in
// milliseconds. The top bits of an ID encode milliseconds since this epoch.
const twitterEpochMs = 1288834974657

var (
	relativeRe     = regexp.MustCompile(`^(\d+)([smhdwy])$`)
	microsecondsRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}$`)
	bareISORe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
)

// placeholders the source uses when it does not know the real time.
var placeholderPhrases = map[string]bool{
	"recent":       true,
	"now":          true,
	"just now":     true,
	"hace poco":    true,
	"reciente":     true,
	"hace un rato": true,
}

// absoluteLayouts cover the "Jun 10, 2025 7:40 PM UTC" family after
// separator normalization.
var absoluteLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"Jan 2, 2006 3:04 PM MST",
	"Jan 2, 2006 15:04 MST",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Resolve converts a raw timestamp string into an absolute UTC time, trying
// in order: relative offsets ("2h"), literal parse after separator cleanup,
// a snowflake-derived time from the numeric ID, and finally now. It never
// fails (an unparseable date must not block persistence), but every fallback
// below the literal parse is a data-quality signal the caller should log.
// A result more than 24h in the future is discarded and re-resolved from the
// ID (clock skew and garbled strings otherwise produce nonsense dates).
func Resolve(raw, fallbackID string, now time.Time) time.Time {
	resolved, ok := parseRaw(raw, now)
	if ok && resolved.Before(now.Add(24*time.Hour)) {
		return resolved.UTC()
	}

	if derived, ok := FromSnowflake(fallbackID); ok {
		return derived.UTC()
	}
	return now.UTC()
}

func parseRaw(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || placeholderPhrases[strings.ToLower(raw)] {
		return time.Time{}, false
	}

	// Relative offset: "2h", "3d", "1w"
	if m := relativeRe.FindStringSubmatch(raw); m != nil {
		value, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "s":
			return now.Add(-time.Duration(value) * time.Second), true
		case "m":
			return now.Add(-time.Duration(value) * time.Minute), true
		case "h":
			return now.Add(-time.Duration(value) * time.Hour), true
		case "d":
			return now.AddDate(0, 0, -value), true
		case "w":
			return now.AddDate(0, 0, -value*7), true
		case "y":
			return now.AddDate(-value, 0, 0), true
		}
	}

	clean := strings.ReplaceAll(raw, " · ", " ")
	clean = strings.TrimSuffix(clean, " UTC")
	clean = strings.TrimSpace(clean)

	// 2025-07-23T06:17:41.248063 -> truncate microseconds, mark UTC
	if microsecondsRe.MatchString(clean) {
		clean = clean[:23] + "Z"
	}
	// 2025-07-22T00:00:00 -> 2025-07-22T00:00:00Z
	if bareISORe.MatchString(clean) {
		clean += "Z"
	}
	// Anything still missing a zone marker is treated as UTC
	if !strings.ContainsAny(clean, "Z+") && !strings.Contains(clean, "UTC") && !strings.Contains(clean, "GMT") {
		clean += " UTC"
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FromSnowflake derives the creation time packed into a platform numeric ID.
// The result is accepted only when it lands in a plausible year (>= 2010);
// short or non-numeric IDs produce garbage below that cutoff.
func FromSnowflake(id string) (time.Time, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || n == 0 {
		return time.Time{}, false
	}

	ms := int64(n>>22) + twitterEpochMs
	t := time.UnixMilli(ms).UTC()
	if t.Year() < 2010 {
		return time.Time{}, false
	}
	return t, true
}
