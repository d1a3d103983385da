package gemini

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Provenance says which stage of the parser chain produced a result, so
// downstream consumers can weigh low-confidence extractions accordingly.
type Provenance string

const (
	ParseStrict    Provenance = "strict"
	ParseSanitized Provenance = "sanitized"
	ParseRegex     Provenance = "regex"
	ParseDefault   Provenance = "default"
)

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// decodeJSON runs the first two stages of the chain: a strict parse of the
// whole response, then a sanitizing re-parse of the outer {...} block (models
// love to wrap JSON in prose or markdown fences). The regex stage is
// shape-specific and lives with each response type.
func decodeJSON(raw string, out interface{}) (Provenance, bool) {
	trimmed := strings.TrimSpace(raw)

	if err := json.Unmarshal([]byte(trimmed), out); err == nil {
		return ParseStrict, true
	}

	block := jsonBlockRe.FindString(sanitize(trimmed))
	if block != "" {
		if err := json.Unmarshal([]byte(block), out); err == nil {
			return ParseSanitized, true
		}
	}

	return ParseDefault, false
}

// sanitize strips markdown code fences and smart quotes before the re-parse.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.ReplaceAll(s, "“", `"`)
	s = strings.ReplaceAll(s, "”", `"`)
	return s
}

// extractStringField pulls `"field": "value"` out of broken JSON.
func extractStringField(raw, field string) (string, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"([^"]*)"`)
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractFloatField pulls `"field": -0.7` out of broken JSON.
func extractFloatField(raw, field string) (float64, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*(-?\d+(?:\.\d+)?)`)
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractStringList pulls `"field": ["a", "b"]` out of broken JSON.
func extractStringList(raw, field string) []string {
	re := regexp.MustCompile(`(?s)"` + regexp.QuoteMeta(field) + `"\s*:\s*\[(.*?)\]`)
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	itemRe := regexp.MustCompile(`"([^"]*)"`)
	var out []string
	for _, item := range itemRe.FindAllStringSubmatch(m[1], -1) {
		if item[1] != "" {
			out = append(out, item[1])
		}
	}
	return out
}
