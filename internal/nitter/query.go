package nitter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Signal extraction used to broaden a search query beyond the bare trend
// term: mentions, hashtags, institutional acronyms and years pulled from
// already-captured post text.

var (
	mentionRe = regexp.MustCompile(`@[A-Za-z0-9_]{2,15}`)
	hashtagRe = regexp.MustCompile(`#[A-Za-zÁÉÍÓÚÜÑáéíóúüñ0-9_]+`)
	yearRe    = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// acronymWhitelist keeps only institutions that actually mean something in
// the Guatemalan political conversation; everything else in caps is noise.
var acronymWhitelist = map[string]bool{
	"PNC": true, "MP": true, "SBS": true, "TSE": true, "SAT": true,
	"IGSS": true, "CC": true, "CSJ": true, "CICIG": true, "FECI": true,
	"UNE": true, "VAMOS": true, "SEMILLA": true, "USAC": true,
	"MINGOB": true, "MINEDUC": true, "MINFIN": true, "MSPAS": true,
	"BANGUAT": true, "SP": true,
}

func ExtractMentions(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range mentionRe.FindAllString(text, -1) {
		handle := strings.TrimPrefix(m, "@")
		if !seen[handle] {
			seen[handle] = true
			out = append(out, handle)
		}
	}
	return out
}

func ExtractHashtags(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, h := range hashtagRe.FindAllString(text, -1) {
		tag := strings.TrimPrefix(h, "#")
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

func ExtractAcronyms(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, token := range strings.Fields(text) {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsUpper(r) {
				return r
			}
			return -1
		}, token)
		if len(cleaned) < 2 || !acronymWhitelist[cleaned] {
			continue
		}
		if !seen[cleaned] {
			seen[cleaned] = true
			out = append(out, cleaned)
		}
	}
	return out
}

// spanishStopWords are function words skipped by the keyword fallback.
var spanishStopWords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true, "una": true,
	"de": true, "del": true, "en": true, "con": true, "por": true, "para": true,
	"que": true, "se": true, "su": true, "sus": true, "es": true, "son": true,
	"al": true, "lo": true, "este": true, "esta": true, "sobre": true,
	"más": true, "mas": true, "pero": true, "como": true, "muy": true,
	"hay": true, "fue": true, "ser": true, "hoy": true, "ya": true, "sin": true,
}

// ExtractKeywords is the fallback signal when a text carries no mentions,
// hashtags or known acronyms: the first max significant words, lowercased,
// stop words and short tokens dropped.
func ExtractKeywords(text string, max int) []string {
	var out []string
	seen := map[string]bool{}
	for _, token := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(word)) < 3 || spanishStopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

func ExtractYears(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, y := range yearRe.FindAllString(text, -1) {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	return out
}

// SignalTerms aggregates the broadening signals found in already-captured
// post text, in priority order: mentions (as @handle), hashtags (as #tag),
// whitelisted acronyms, then years. The result feeds a follow-up search
// query, so it is deduplicated and capped at max.
func SignalTerms(texts []string, max int) []string {
	joined := strings.Join(texts, "\n")

	var out []string
	seen := map[string]bool{}
	add := func(terms []string) {
		for _, term := range terms {
			if max > 0 && len(out) >= max {
				return
			}
			if !seen[term] {
				seen[term] = true
				out = append(out, term)
			}
		}
	}

	add(prefixed("@", ExtractMentions(joined)))
	add(prefixed("#", ExtractHashtags(joined)))
	add(ExtractAcronyms(joined))
	add(ExtractYears(joined))
	return out
}

func prefixed(prefix string, terms []string) []string {
	out := make([]string, len(terms))
	for i, term := range terms {
		out[i] = prefix + term
	}
	return out
}

// toASCII strips diacritics so "Xelajú" also matches "Xelaju".
func toASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Variants expands one term for an OR group: the raw form, the ascii form,
// and for multi-word terms the glued hashtag and the quoted phrase.
func Variants(term string) []string {
	raw := strings.TrimSpace(term)
	if raw == "" {
		return nil
	}
	ascii := toASCII(raw)

	seen := map[string]bool{}
	var out []string
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(raw)
	add(ascii)
	if !strings.HasPrefix(raw, "#") && len(strings.Fields(raw)) > 1 {
		add("#" + strings.ReplaceAll(raw, " ", ""))
		add("#" + strings.ReplaceAll(ascii, " ", ""))
		add(`"` + raw + `"`)
	}
	return out
}

// maxQueryTerms caps OR groups so the assembled query stays short enough for
// the upstream search endpoint.
const maxQueryTerms = 14

// BuildMultipolarQuery assembles a broadened boolean-OR query with a Spanish
// language filter and a recency cutoff:
//
//	(TermA OR #TermA OR "Term A" OR ActorB) lang:es since:2025-01-02
func BuildMultipolarQuery(baseTerms, actors []string, sinceDays int, now time.Time) string {
	seen := map[string]bool{}
	var items []string
	push := func(terms []string, cap int) {
		for i, t := range terms {
			if i >= cap {
				break
			}
			for _, v := range Variants(t) {
				if !seen[v] && len(items) < maxQueryTerms {
					seen[v] = true
					items = append(items, v)
				}
			}
		}
	}

	push(baseTerms, 4)
	push(actors, 4)

	if len(items) == 0 {
		return ""
	}

	if sinceDays < 1 {
		sinceDays = 1
	}
	since := now.AddDate(0, 0, -sinceDays).Format("2006-01-02")

	return fmt.Sprintf("(%s) lang:es since:%s", strings.Join(items, " OR "), since)
}
