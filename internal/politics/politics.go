// Package politics scores social posts for Guatemalan political relevance.
package politics

import (
	"strings"

	"github.com/standatpd/pulsetrends/internal/nitter"
)

// Analysis is the political relevance result for one post. Computed fresh per
// post, never cached.
type Analysis struct {
	IsPolitical    bool
	RelevanceScore int      // always clamped to [0,10]
	Categories     []string // keyword category names that fired
	Entities       []string // matched keywords, in category order
}

// keywordCategory pairs a category name with its keyword set. Order matters:
// categories are evaluated and reported in this fixed order.
type keywordCategory struct {
	name     string
	keywords []string
}

var politicalKeywords = []keywordCategory{
	{"gobierno", []string{"gobierno", "presidente", "giammattei", "arevalo", "ministerio", "ministro", "gabinete"}},
	{"congreso", []string{"congreso", "diputado", "diputada", "legislativo", "ley", "decreto", "reforma"}},
	{"judicial", []string{"corte", "suprema", "justicia", "mp", "fiscal", "cicig", "feci"}},
	{"electoral", []string{"tse", "tribunal supremo electoral", "elecciones", "candidato", "partido", "votacion"}},
	{"instituciones", []string{"mingob", "minfin", "mineduc", "mspas", "sat", "banguat", "igss"}},
	{"partidos", []string{"une", "vamos", "semilla", "valor", "todos", "fuerza", "victoria"}},
	{"figuras", []string{"torres", "ponce", "porras", "sandoval", "espada", "morales", "colom"}},
	{"temas", []string{"corrupcion", "transparencia", "derechos humanos", "migracion", "seguridad"}},
}

// Scorer computes relevance scores. MinRelevance suppresses posts with a
// single weak keyword hit; the value is configuration, not a constant.
type Scorer struct {
	minRelevance int
}

func NewScorer(minRelevance int) *Scorer {
	return &Scorer{minRelevance: minRelevance}
}

// Score rates a post 0-10 for political relevance: 2 points per keyword hit,
// +3 for a verified author, +2 when total engagement exceeds 100 and a further
// +3 when it exceeds 500 (an ultra-viral post gets both bonuses). The final
// score is clamped to 10, and IsPolitical is forced false below MinRelevance
// regardless of keyword hits.
func (s *Scorer) Score(post nitter.Post) Analysis {
	texto := strings.ToLower(post.Texto)

	analysis := Analysis{}

	for _, cat := range politicalKeywords {
		var matches []string
		for _, keyword := range cat.keywords {
			if strings.Contains(texto, keyword) {
				matches = append(matches, keyword)
			}
		}
		if len(matches) > 0 {
			analysis.IsPolitical = true
			analysis.Categories = append(analysis.Categories, cat.name)
			analysis.Entities = append(analysis.Entities, matches...)
			analysis.RelevanceScore += len(matches) * 2
		}
	}

	if post.Verified {
		analysis.RelevanceScore += 3
	}

	engagement := post.Likes + post.Retweets + post.Replies
	if engagement > 100 {
		analysis.RelevanceScore += 2
	}
	if engagement > 500 {
		analysis.RelevanceScore += 3
	}

	if analysis.RelevanceScore > 10 {
		analysis.RelevanceScore = 10
	}

	if analysis.RelevanceScore < s.minRelevance {
		analysis.IsPolitical = false
	}

	return analysis
}
