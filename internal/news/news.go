package news

import (
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/standatpd/pulsetrends/internal/logger"
	"github.com/standatpd/pulsetrends/internal/trends"
)

// FeedSource is one configured RSS source.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FeedsConfig is YAML config structure
// feeds:
//   - name: Prensa Libre
//     url: https://...
type FeedsConfig struct {
	Feeds []FeedSource `yaml:"feeds"`
}

// LoadFeeds reads the RSS sources list from a YAML file.
func LoadFeeds(path string) ([]FeedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// Article is one feed item normalized for storage.
type Article struct {
	Titulo    string
	Resumen   string
	URL       string
	Fuente    string
	Categoria trends.Category
	Fecha     time.Time
}

// Fetcher downloads configured feeds and categorizes their items with the
// same lexicon the trends path uses.
type Fetcher struct {
	classifier *trends.Classifier
	maxAge     time.Duration
	parser     *gofeed.Parser
}

func NewFetcher(classifier *trends.Classifier, maxAge time.Duration) *Fetcher {
	return &Fetcher{
		classifier: classifier,
		maxAge:     maxAge,
		parser:     gofeed.NewParser(),
	}
}

// FetchAll downloads and parses all feeds. A failing feed is logged and
// skipped so one dead source never kills the run.
func (f *Fetcher) FetchAll(sources []FeedSource) []Article {
	var articles []Article
	successCount := 0
	cutoff := time.Now().Add(-f.maxAge)

	for _, src := range sources {
		feed, err := f.parser.ParseURL(src.URL)
		if err != nil {
			logger.Warn("⚠️ Error parsing RSS", "source", src.Name, "error", err)
			continue
		}
		kept := 0
		for _, item := range feed.Items {
			article, ok := f.normalize(src, item, cutoff)
			if !ok {
				continue
			}
			articles = append(articles, article)
			kept++
		}
		successCount++
		logger.Info("Loaded news", "source", src.Name, "items", len(feed.Items), "kept", kept)
	}

	logger.Info("Processed RSS feeds", "ok", successCount, "total", len(sources))
	return articles
}

// normalize converts one feed item, dropping items without a link or title
// and items older than the age cutoff.
func (f *Fetcher) normalize(src FeedSource, item *gofeed.Item, cutoff time.Time) (Article, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return Article{}, false
	}

	published := time.Now()
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}
	if f.maxAge > 0 && published.Before(cutoff) {
		return Article{}, false
	}

	summary := strings.TrimSpace(item.Description)

	return Article{
		Titulo:    title,
		Resumen:   summary,
		URL:       link,
		Fuente:    src.Name,
		Categoria: f.classifier.Categorize(title + " " + summary),
		Fecha:     published,
	}, true
}
