package news

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/standatpd/pulsetrends/internal/trends"
)

func testFetcher(t *testing.T) *Fetcher {
	t.Helper()
	lex, err := trends.LoadLexicon("testdata/missing.yaml")
	if err != nil {
		t.Fatalf("default lexicon: %v", err)
	}
	return NewFetcher(trends.NewClassifier(lex), 24*time.Hour)
}

func TestLoadFeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	content := "feeds:\n  - name: Prensa Libre\n    url: https://example.com/feed\n  - name: Soy502\n    url: https://example.com/rss\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFeeds(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d feeds, want 2", len(got))
	}
	if got[0].Name != "Prensa Libre" || got[0].URL != "https://example.com/feed" {
		t.Errorf("got %+v", got[0])
	}
}

func TestLoadFeeds_MissingFile(t *testing.T) {
	if _, err := LoadFeeds("testdata/nope.yaml"); err == nil {
		t.Errorf("missing feeds config must error")
	}
}

func TestNormalize_CategorizesFromTitleAndSummary(t *testing.T) {
	f := testFetcher(t)
	published := time.Now().Add(-2 * time.Hour)
	item := &gofeed.Item{
		Title:           "Congreso aprueba nueva ley",
		Description:     "Los diputados discutieron la reforma",
		Link:            "https://example.com/nota",
		PublishedParsed: &published,
	}

	got, ok := f.normalize(FeedSource{Name: "Prensa Libre"}, item, time.Now().Add(-24*time.Hour))
	if !ok {
		t.Fatalf("expected item to be kept")
	}
	if got.Categoria != trends.CategoryPolitics {
		t.Errorf("got category %q, want %q", got.Categoria, trends.CategoryPolitics)
	}
	if got.Fuente != "Prensa Libre" || !got.Fecha.Equal(published) {
		t.Errorf("got %+v", got)
	}
}

func TestNormalize_DropsStaleItems(t *testing.T) {
	f := testFetcher(t)
	published := time.Now().Add(-48 * time.Hour)
	item := &gofeed.Item{
		Title:           "Nota vieja",
		Link:            "https://example.com/vieja",
		PublishedParsed: &published,
	}

	if _, ok := f.normalize(FeedSource{Name: "x"}, item, time.Now().Add(-24*time.Hour)); ok {
		t.Errorf("stale item should be dropped")
	}
}

func TestNormalize_DropsItemsWithoutLink(t *testing.T) {
	f := testFetcher(t)
	item := &gofeed.Item{Title: "Sin enlace"}
	if _, ok := f.normalize(FeedSource{Name: "x"}, item, time.Time{}); ok {
		t.Errorf("item without link should be dropped")
	}
}
