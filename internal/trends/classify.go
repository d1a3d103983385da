package trends

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon is the keyword configuration for trend categorization. It can be
// loaded from YAML; absent sections fall back to the built-in Guatemalan
// defaults so the pipeline works without a config file.
type Lexicon struct {
	Politics []string `yaml:"politics"`
	Economic []string `yaml:"economic"`
	Social   []string `yaml:"social"`
	Sports   []string `yaml:"sports"`
}

var defaultLexicon = Lexicon{
	Politics: []string{
		"política", "político", "congreso", "gobierno", "presidente", "ley",
		"elecciones", "partido", "diputado", "ministerio", "decreto", "reforma",
	},
	Economic: []string{
		"finanzas", "economía", "banco", "impuesto", "precio", "dólar",
		"inflación", "comercio", "quetzal", "empleo",
	},
	Social: []string{
		"educación", "salud", "familia", "sociedad", "comunidad", "cultura",
		"migración", "universidad",
	},
	Sports: []string{
		"fútbol", "futbol", "gol", "liga", "partido vs", "champions", "mundial",
		"selección", "selecta", "jornada", "torneo", "estadio", "fichaje",
		"municipal", "comunicaciones", "xelajú", "cobán", "antigua gfc",
		"messi", "cristiano", "ronaldo", "neymar", "mbappé",
		"real madrid", "barcelona", "psg", "nba", "ufc", "f1",
	},
}

// LoadLexicon reads the keyword config from path. A missing file is not an
// error; the defaults are used instead.
func LoadLexicon(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultLexicon, nil
		}
		return Lexicon{}, err
	}
	defer f.Close()

	var lex Lexicon
	if err := yaml.NewDecoder(f).Decode(&lex); err != nil {
		return Lexicon{}, err
	}

	// Backfill empty sections from defaults
	if len(lex.Politics) == 0 {
		lex.Politics = defaultLexicon.Politics
	}
	if len(lex.Economic) == 0 {
		lex.Economic = defaultLexicon.Economic
	}
	if len(lex.Social) == 0 {
		lex.Social = defaultLexicon.Social
	}
	if len(lex.Sports) == 0 {
		lex.Sports = defaultLexicon.Sports
	}
	return lex, nil
}

// Classifier assigns topic and sports labels to trends. Constructed once per
// run and passed explicitly; there is no package-level mutable state.
type Classifier struct {
	lexicon Lexicon
}

func NewClassifier(lexicon Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

// Categorize maps a trend string to a coarse topic. First matching set wins
// in fixed priority order: Politics > Economic > Social; no match is General.
func (c *Classifier) Categorize(text string) Category {
	lower := strings.ToLower(text)

	if containsAny(lower, c.lexicon.Politics) {
		return CategoryPolitics
	}
	if containsAny(lower, c.lexicon.Economic) {
		return CategoryEconomic
	}
	if containsAny(lower, c.lexicon.Social) {
		return CategorySocial
	}
	return CategoryGeneral
}

// hashtag glued to a follower count, e.g. "#Soccer839K"
var hashtagCountRe = regexp.MustCompile(`(?i)^#\S*\d+[KMB]$`)

// IsSports is the local keyword heuristic for the sports/non-sports split.
// Team names, player names, league terms, plus the hashtag+follower-count
// pattern that fandom trends carry.
func (c *Classifier) IsSports(raw string) bool {
	if hashtagCountRe.MatchString(strings.TrimSpace(raw)) {
		return true
	}
	return containsAny(strings.ToLower(raw), c.lexicon.Sports)
}

// containsAny does case-insensitive substring matching, with whole-word
// matching for very short keywords so "f1" does not fire inside words.
func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if len(k) <= 3 && !strings.Contains(k, " ") {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(lower) {
				return true
			}
			continue
		}
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
