package scraper

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ArticleContent is the full text of a scraped article.
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

// siteSelectors maps a hostname fragment to the CSS selectors tried in order
// for that outlet's article body.
var siteSelectors = map[string][]string{
	"prensalibre.com": {
		".article-content p",
		".entry-content p",
		"article p",
	},
	"soy502.com": {
		".nota-contenido p",
		".article-body p",
		"article p",
	},
	"republica.gt": {
		".entry-content p",
		".post-content p",
		"article p",
	},
	"lahora.gt": {
		".td-post-content p",
		".entry-content p",
		"article p",
	},
}

var genericSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".entry-content p",
	".content p",
	".post-content p",
}

var httpClient = &http.Client{Timeout: 15 * time.Second}

// ExtractFullArticle downloads an article page and extracts its body text.
func ExtractFullArticle(url string) (*ArticleContent, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %v", err)
	}

	content := cleanContent(extractContent(doc, url))
	if content == "" {
		return nil, fmt.Errorf("can't get content")
	}

	return &ArticleContent{
		Title:   extractTitle(doc),
		Content: content,
		URL:     url,
	}, nil
}

// extractContent picks the selector set for the outlet, falling back to the
// generic set for unknown hosts.
func extractContent(doc *goquery.Document, url string) string {
	selectors := genericSelectors
	for host, sel := range siteSelectors {
		if strings.Contains(url, host) {
			selectors = sel
			break
		}
	}

	var paragraphs []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > 10 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

func extractTitle(doc *goquery.Document) string {
	for _, selector := range []string{"h1", ".article-title", ".entry-title", "title"} {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}
	return ""
}

// cleanContent drops boilerplate lines that outlets append to article bodies.
func cleanContent(content string) string {
	noise := []string{
		"Lea también",
		"Lea más",
		"Le puede interesar",
		"Suscríbete",
		"Todos los derechos reservados",
		"Publicidad",
	}

	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			kept = append(kept, line)
			continue
		}
		skip := false
		for _, n := range noise {
			if strings.HasPrefix(line, n) {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, line)
		}
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
