package runlog

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standatpd/pulsetrends/internal/logger"
	"github.com/standatpd/pulsetrends/internal/storage"
)

// Run statuses persisted to system_execution_logs.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run accumulates the outcome of one cron execution and persists it at the
// end. Safe for concurrent use by the pipeline workers.
type Run struct {
	mu sync.Mutex

	ExecutionID string
	Script      string
	startedAt   time.Time

	trendsFound int
	tweetsSaved int
	newsSaved   int
	duplicates  int
	failures    int

	aiRequests   int
	aiTokensUsed int
	aiCostUSD    float64

	notes []string
}

// Start opens a new run for the given script ("trends", "news", "reanalyze").
func Start(script string) *Run {
	r := &Run{
		ExecutionID: uuid.New().String(),
		Script:      script,
		startedAt:   time.Now().UTC(),
	}
	logger.Info("🚀 Run started", "script", script, "execution_id", r.ExecutionID)
	return r
}

func (r *Run) AddTrends(n int) {
	r.mu.Lock()
	r.trendsFound += n
	r.mu.Unlock()
}

func (r *Run) AddTweetSaved() {
	r.mu.Lock()
	r.tweetsSaved++
	r.mu.Unlock()
}

func (r *Run) AddNewsSaved() {
	r.mu.Lock()
	r.newsSaved++
	r.mu.Unlock()
}

func (r *Run) AddDuplicate() {
	r.mu.Lock()
	r.duplicates++
	r.mu.Unlock()
}

func (r *Run) AddFailure(note string) {
	r.mu.Lock()
	r.failures++
	if note != "" && len(r.notes) < 20 {
		r.notes = append(r.notes, note)
	}
	r.mu.Unlock()
}

// AddAIUsage records one AI call's token and cost footprint.
func (r *Run) AddAIUsage(tokens int, costUSD float64) {
	r.mu.Lock()
	r.aiRequests++
	r.aiTokensUsed += tokens
	r.aiCostUSD += costUSD
	r.mu.Unlock()
}

// Failures returns the failure count so far.
func (r *Run) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures
}

// Finish persists the run summary. A nil store (e.g. in tests) skips
// persistence but still logs the summary.
func (r *Run) Finish(store *storage.Store, status string) {
	r.mu.Lock()
	finishedAt := time.Now().UTC()
	summary := map[string]interface{}{
		"trends_found":   r.trendsFound,
		"tweets_saved":   r.tweetsSaved,
		"news_saved":     r.newsSaved,
		"duplicates":     r.duplicates,
		"failures":       r.failures,
		"ai_requests":    r.aiRequests,
		"ai_tokens_used": r.aiTokensUsed,
		"ai_cost_usd":    r.aiCostUSD,
		"duration_sec":   finishedAt.Sub(r.startedAt).Seconds(),
	}
	if len(r.notes) > 0 {
		summary["failure_notes"] = r.notes
	}
	record := storage.ExecutionRecord{
		ExecutionID:  r.ExecutionID,
		Script:       r.Script,
		Status:       status,
		StartedAt:    r.startedAt,
		FinishedAt:   finishedAt,
		TweetsSaved:  r.tweetsSaved,
		TrendsFound:  r.trendsFound,
		Failures:     r.failures,
		AITokensUsed: r.aiTokensUsed,
		AICostUSD:    r.aiCostUSD,
	}
	r.mu.Unlock()

	if raw, err := json.Marshal(summary); err == nil {
		record.Summary = raw
	}

	logger.Info("🏁 Run finished",
		"script", record.Script,
		"execution_id", record.ExecutionID,
		"status", status,
		"tweets_saved", record.TweetsSaved,
		"failures", record.Failures,
		"ai_cost_usd", record.AICostUSD,
	)

	if store == nil {
		return
	}
	if err := store.SaveExecution(record); err != nil {
		logger.Error("❌ Failed to persist execution log", "error", err)
	}
}
