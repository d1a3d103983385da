package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	TrendsProcessed   int64
	TweetsSaved       int64
	PoliticalTweets   int64
	DuplicatesSkipped int64
	NewsSaved         int64
	AIRequests        int64
	AIRequestsBlocked int64
	FetchFailures     int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementTrendsProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrendsProcessed++
}

func (m *Metrics) IncrementTweetsSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TweetsSaved++
}

func (m *Metrics) IncrementPoliticalTweets() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PoliticalTweets++
}

func (m *Metrics) IncrementDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementNewsSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewsSaved++
}

func (m *Metrics) IncrementAIRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AIRequests++
}

func (m *Metrics) IncrementAIRequestsBlocked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AIRequestsBlocked++
}

func (m *Metrics) IncrementFetchFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchFailures++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"trends_processed":        m.TrendsProcessed,
		"tweets_saved":            m.TweetsSaved,
		"political_tweets":        m.PoliticalTweets,
		"duplicates_skipped":      m.DuplicatesSkipped,
		"news_saved":              m.NewsSaved,
		"ai_requests":             m.AIRequests,
		"ai_requests_blocked":     m.AIRequestsBlocked,
		"fetch_failures":          m.FetchFailures,
		"last_processing_time":    m.LastProcessingTime.String(),
		"average_processing_time": m.AverageProcessingTime.String(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"is_healthy":              m.IsHealthy,
		"last_error":              m.LastError,
	}
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}
