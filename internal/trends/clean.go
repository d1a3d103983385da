package trends

import (
	"regexp"
	"strings"
)

var (
	rankPrefixRe    = regexp.MustCompile(`^\d+\.\s*`)
	parenSuffixRe   = regexp.MustCompile(`\s*\([^)]*\)$`)
	countSuffixRe   = regexp.MustCompile(`(?i)\d+[KMB]?$`)
	trailingDigitRe = regexp.MustCompile(`\s*\d+$`)
)

// Clean turns a raw trend label into a search term. The steps run in a fixed
// order and each degrades to best-effort string surgery:
//
//	"1. #Taylor839K" -> "Taylor"
//	"Congreso (12K tweets)" -> "Congreso"
//
// ok is false when the cleaned term ends up shorter than 2 characters; such
// trends are rejected rather than passed downstream.
func Clean(raw string) (string, bool) {
	clean := rankPrefixRe.ReplaceAllString(raw, "")
	clean = strings.TrimSpace(clean)

	if strings.HasPrefix(clean, "#") {
		clean = clean[1:]
	}

	clean = parenSuffixRe.ReplaceAllString(clean, "")
	clean = countSuffixRe.ReplaceAllString(clean, "")
	clean = trailingDigitRe.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(clean)

	if len([]rune(clean)) < 2 {
		return "", false
	}
	return clean, true
}
