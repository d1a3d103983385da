// Package trends holds the trend model, text normalization and the
// category/sports classification used to shape each run's working set.
package trends

// Category is the coarse topic label persisted with each tweet.
type Category string

const (
	CategoryPolitics Category = "Política"
	CategoryEconomic Category = "Económica"
	CategorySocial   Category = "Sociales"
	CategoryGeneral  Category = "General"
)

// Confidence sources for the sports label.
const (
	SourceKeyword = "keyword"
	SourceAI      = "ai"
)

// Trend is one trending topic. The upstream API sometimes returns a bare
// string and sometimes {name, tweet_count, keywords}; the nitter adapter
// always normalizes to this richer shape before anything else touches it.
type Trend struct {
	Name       string
	TweetCount string
	Keywords   []string

	// Derived for the duration of one run, never persisted on their own.
	Query          string // cleaned search term, empty when rejected
	Classification Classification
}

// Classification is the per-run label set attached to a trend.
type Classification struct {
	Category         Category
	IsSports         bool
	ConfidenceSource string
}
