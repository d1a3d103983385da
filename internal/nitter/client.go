// Package nitter is the HTTP adapter for the trending/search scraping API.
package nitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/standatpd/pulsetrends/internal/trends"
)

// Post is one social media message as delivered by the search endpoint.
// Fecha stays a raw string here; the dates package resolves it.
type Post struct {
	TweetID  string `json:"tweet_id"`
	Usuario  string `json:"usuario"`
	Texto    string `json:"texto"`
	Fecha    string `json:"fecha"`
	Enlace   string `json:"enlace"`
	Likes    int    `json:"likes"`
	Retweets int    `json:"retweets"`
	Replies  int    `json:"replies"`
	Verified bool   `json:"verified"`

	Raw json.RawMessage `json:"-"` // original payload, persisted verbatim
}

// Client calls the ExtractorT-style API. Every request carries the configured
// timeout; a cancelled or timed-out call surfaces as a transport error.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// trendEntry tolerates the API's two trend shapes: a bare string or an
// object with name/tweet_count/keywords.
type trendEntry struct {
	Name       string
	TweetCount string
	Keywords   []string
}

func (t *trendEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Name = s
		return nil
	}
	var obj struct {
		Name       string   `json:"name"`
		TweetCount string   `json:"tweet_count"`
		Keywords   []string `json:"keywords"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Name = obj.Name
	t.TweetCount = obj.TweetCount
	t.Keywords = obj.Keywords
	return nil
}

// FetchTrends returns the current trending topics for a location, already
// normalized to the rich trend shape. A success envelope with zero trends is
// a valid empty result, not an error.
func (c *Client) FetchTrends(ctx context.Context, location string, limit int) ([]trends.Trend, error) {
	u := fmt.Sprintf("%s/trending?location=%s", c.baseURL, url.QueryEscape(location))

	var envelope struct {
		Status  string       `json:"status"`
		Message string       `json:"message"`
		Trends  []trendEntry `json:"trends"`
	}
	if err := c.getJSON(ctx, u, &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != "success" {
		return nil, fmt.Errorf("trending endpoint returned %q: %s", envelope.Status, envelope.Message)
	}

	result := make([]trends.Trend, 0, len(envelope.Trends))
	for i, entry := range envelope.Trends {
		if limit > 0 && i >= limit {
			break
		}
		result = append(result, trends.Trend{
			Name:       entry.Name,
			TweetCount: entry.TweetCount,
			Keywords:   entry.Keywords,
		})
	}
	return result, nil
}

// SearchPosts queries recent posts for a search term. Empty result sets come
// back as an empty slice with a nil error so the retry layer can tell them
// apart from transport failures.
func (c *Client) SearchPosts(ctx context.Context, query, location string, limit int) ([]Post, error) {
	u := fmt.Sprintf("%s/nitter_context?q=%s&location=%s&limit=%d",
		c.baseURL, url.QueryEscape(query), url.QueryEscape(location), limit)

	var envelope struct {
		Status  string            `json:"status"`
		Message string            `json:"message"`
		Tweets  []json.RawMessage `json:"tweets"`
	}
	if err := c.getJSON(ctx, u, &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != "success" {
		return nil, fmt.Errorf("search endpoint returned %q: %s", envelope.Status, envelope.Message)
	}

	posts := make([]Post, 0, len(envelope.Tweets))
	for _, raw := range envelope.Tweets {
		var p Post
		if err := json.Unmarshal(raw, &p); err != nil {
			continue // skip malformed entries, the batch stays usable
		}
		p.Raw = raw
		posts = append(posts, p)
	}
	return posts, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
