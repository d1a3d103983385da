// Package pipeline wires the fetch, classify, score and persist stages into
// the three cron entrypoints: trends, news and reanalyze.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/standatpd/pulsetrends/internal/config"
	"github.com/standatpd/pulsetrends/internal/costguard"
	"github.com/standatpd/pulsetrends/internal/dates"
	"github.com/standatpd/pulsetrends/internal/gemini"
	"github.com/standatpd/pulsetrends/internal/logger"
	"github.com/standatpd/pulsetrends/internal/metrics"
	"github.com/standatpd/pulsetrends/internal/news"
	"github.com/standatpd/pulsetrends/internal/nitter"
	"github.com/standatpd/pulsetrends/internal/politics"
	"github.com/standatpd/pulsetrends/internal/retry"
	"github.com/standatpd/pulsetrends/internal/runlog"
	"github.com/standatpd/pulsetrends/internal/scraper"
	"github.com/standatpd/pulsetrends/internal/storage"
	"github.com/standatpd/pulsetrends/internal/trends"
)

// Pipeline holds the shared collaborators for one process lifetime. The AI
// client may be nil (no API key); every AI step then degrades to its
// keyword/default fallback.
type Pipeline struct {
	cfg        *config.Config
	store      *storage.Store
	api        *nitter.Client
	ai         *gemini.Client
	classifier *trends.Classifier
	scorer     *politics.Scorer
	guard      *costguard.Tracker
}

func New(cfg *config.Config, store *storage.Store, api *nitter.Client, ai *gemini.Client, classifier *trends.Classifier) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		api:        api,
		ai:         ai,
		classifier: classifier,
		scorer:     politics.NewScorer(cfg.MinRelevance),
		guard: costguard.New(costguard.Limits{
			MaxCostPerCallUSD: cfg.MaxCostPerCallUSD,
			MaxCallsPerMinute: cfg.MaxCallsPerMinute,
			MaxDailyCostUSD:   cfg.MaxDailyCostUSD,
			CostPerToken:      cfg.CostPerToken,
		}),
	}
}

// RunTrends executes the main capture cycle: trending topics in, analyzed
// tweets out. A failed trend fetch aborts the whole run; everything after
// that is a per-unit failure that is counted and skipped.
func (p *Pipeline) RunTrends(ctx context.Context) error {
	run := runlog.Start("trends")
	start := time.Now()
	log := logger.With("trends")

	var fetched []trends.Trend
	err := retry.WithRetry(ctx, retry.RetryConfig{MaxAttempts: p.cfg.RetryAttempts, Delay: 2 * time.Second, Backoff: true}, func() error {
		var ferr error
		fetched, ferr = p.api.FetchTrends(ctx, p.cfg.Location, 0)
		return ferr
	})
	if err != nil {
		metrics.Global.SetError(err.Error())
		metrics.Global.IncrementFetchFailures()
		run.AddFailure(fmt.Sprintf("trending fetch: %v", err))
		run.Finish(p.store, runlog.StatusFailed)
		return fmt.Errorf("fetching trends: %w", err)
	}

	log.Info("📊 Trends fetched", "count", len(fetched))
	run.AddTrends(len(fetched))

	// Normalize names; trends that clean down to nothing are dropped here.
	var usable []trends.Trend
	for _, t := range fetched {
		term, ok := trends.Clean(t.Name)
		if !ok {
			log.Debug("Trend rejected by cleaner", "raw", t.Name)
			continue
		}
		t.Query = term
		metrics.Global.IncrementTrendsProcessed()
		usable = append(usable, t)
	}

	balanced := p.balance(ctx, run, usable, log)
	log.Info("⚖️ Working set balanced", "usable", len(usable), "selected", len(balanced))

	seen := &sync.Map{}
	sem := semaphore.NewWeighted(int64(p.cfg.Concurrency))
	var wg sync.WaitGroup

	for i := range balanced {
		if err := sem.Acquire(ctx, 1); err != nil {
			run.AddFailure(fmt.Sprintf("context cancelled: %v", err))
			break
		}
		wg.Add(1)
		go func(t trends.Trend) {
			defer sem.Release(1)
			defer wg.Done()
			p.processTrend(ctx, run, t, seen, log)
		}(balanced[i])
	}
	wg.Wait()

	metrics.Global.RecordProcessingTime(time.Since(start))
	metrics.Global.SetLastRun()
	run.Finish(p.store, runlog.StatusCompleted)
	return nil
}

// balance labels trends sports/non-sports and trims the list to the
// configured composition. The AI batch label is preferred; on any failure the
// whole batch falls back to the keyword classifier.
func (p *Pipeline) balance(ctx context.Context, run *runlog.Run, usable []trends.Trend, log *slog.Logger) []trends.Trend {
	labels := make([]bool, len(usable))
	source := trends.SourceAI

	aiLabels, tokens, err := p.classifySports(ctx, run, usable)
	if err != nil {
		if err != errNoAI {
			log.Warn("AI sports classification failed, using keywords", "error", err)
		}
		source = trends.SourceKeyword
		for i, t := range usable {
			labels[i] = p.classifier.IsSports(t.Name)
		}
	} else {
		labels = aiLabels
		log.Debug("AI sports classification ok", "tokens", tokens)
	}

	for i := range usable {
		usable[i].Classification = trends.Classification{
			Category:         p.classifier.Categorize(usable[i].Query),
			IsSports:         labels[i],
			ConfidenceSource: source,
		}
	}

	return trends.Balance(usable, labels, p.cfg.MaxSportsTrends, p.cfg.MaxNonSportsTrends)
}

var errNoAI = fmt.Errorf("no AI client configured")

// classifySports runs the batch sports/non-sports AI call behind the cost
// guard.
func (p *Pipeline) classifySports(ctx context.Context, run *runlog.Run, usable []trends.Trend) ([]bool, int, error) {
	if p.ai == nil || len(usable) == 0 {
		return nil, 0, errNoAI
	}

	names := make([]string, len(usable))
	var estimate int
	for i, t := range usable {
		names[i] = t.Name
		estimate += estimateTokens(t.Name)
	}

	decision := p.guard.CanProceed(estimate + 300)
	if !decision.Allowed {
		metrics.Global.IncrementAIRequestsBlocked()
		return nil, 0, fmt.Errorf("cost guard rejected classification: %s", decision.Reason)
	}

	labels, tokens, err := p.ai.ClassifyTrends(ctx, names)
	if err != nil {
		return nil, tokens, err
	}
	usage := p.guard.Record(tokens)
	metrics.Global.IncrementAIRequests()
	run.AddAIUsage(tokens, usage.CostUSD)
	return labels, tokens, nil
}

// processTrend fetches and persists the tweets of one trend. Failures here
// never abort the run.
func (p *Pipeline) processTrend(ctx context.Context, run *runlog.Run, t trends.Trend, seen *sync.Map, log *slog.Logger) {
	actors := t.Keywords
	if len(actors) == 0 {
		actors = nitter.ExtractKeywords(t.Name, 4)
	}
	query := nitter.BuildMultipolarQuery([]string{t.Query}, actors, 1, time.Now())

	posts, err := retry.FetchWithRetry(ctx, retry.DefaultFetchDelays, func() ([]nitter.Post, error) {
		return p.api.SearchPosts(ctx, query, p.cfg.Location, p.cfg.TweetLimit)
	})
	if err != nil {
		metrics.Global.IncrementFetchFailures()
		run.AddFailure(fmt.Sprintf("search %q: %v", t.Query, err))
		log.Warn("❌ Search failed", "trend", t.Query, "error", err)
		return
	}
	if len(posts) == 0 {
		run.AddFailure(fmt.Sprintf("search %q: no tweets after retries", t.Query))
		log.Warn("Search returned nothing", "trend", t.Query)
		return
	}

	saved, politicalTexts := p.savePosts(ctx, run, t, posts, seen)
	log.Info("💾 Trend processed", "trend", t.Query, "tweets", len(posts), "saved", saved)

	if len(politicalTexts) > 0 {
		p.broadenSearch(ctx, run, t, politicalTexts, seen, log)
	}
}

// savePosts persists one batch of posts, skipping duplicates, and returns
// the saved count plus the text of every political post in the batch.
func (p *Pipeline) savePosts(ctx context.Context, run *runlog.Run, t trends.Trend, posts []nitter.Post, seen *sync.Map) (int, []string) {
	saved := 0
	var political []string
	for _, post := range posts {
		if post.TweetID == "" {
			continue
		}
		if _, dup := seen.LoadOrStore(post.TweetID, struct{}{}); dup {
			metrics.Global.IncrementDuplicatesSkipped()
			run.AddDuplicate()
			continue
		}
		if p.store != nil && p.store.TweetExists(post.TweetID) {
			metrics.Global.IncrementDuplicatesSkipped()
			run.AddDuplicate()
			continue
		}

		isPolitical, err := p.saveAnalyzedPost(ctx, run, t, post)
		if err != nil {
			run.AddFailure(fmt.Sprintf("save %s: %v", post.TweetID, err))
			continue
		}
		saved++
		if isPolitical {
			political = append(political, post.Texto)
		}
	}
	return saved, political
}

// broadenSearch runs one follow-up query for a trend whose first batch
// carried political tweets, using the mentions, hashtags, acronyms and years
// found in those tweets as the actor terms. A single attempt: the first pass
// already proved the endpoint reachable, and the extra coverage is best
// effort.
func (p *Pipeline) broadenSearch(ctx context.Context, run *runlog.Run, t trends.Trend, texts []string, seen *sync.Map, log *slog.Logger) {
	signals := nitter.SignalTerms(texts, 6)
	if len(signals) == 0 {
		return
	}
	query := nitter.BuildMultipolarQuery([]string{t.Query}, signals, 1, time.Now())

	posts, err := p.api.SearchPosts(ctx, query, p.cfg.Location, p.cfg.TweetLimit)
	if err != nil {
		metrics.Global.IncrementFetchFailures()
		run.AddFailure(fmt.Sprintf("broadened search %q: %v", t.Query, err))
		log.Warn("❌ Broadened search failed", "trend", t.Query, "error", err)
		return
	}

	saved, _ := p.savePosts(ctx, run, t, posts, seen)
	log.Info("🔎 Broadened search", "trend", t.Query, "signals", len(signals), "saved", saved)
}

// saveAnalyzedPost runs the full per-tweet analysis chain and persists the
// result. It reports whether the tweet scored as political so the caller can
// collect its text for the broadened follow-up search.
func (p *Pipeline) saveAnalyzedPost(ctx context.Context, run *runlog.Run, t trends.Trend, post nitter.Post) (bool, error) {
	fecha := dates.Resolve(post.Fecha, post.TweetID, time.Now().UTC())
	analysis := p.scorer.Score(post)

	record := storage.TweetRecord{
		TweetID:       post.TweetID,
		TrendClean:    t.Query,
		TrendOriginal: t.Name,
		Usuario:       post.Usuario,
		Texto:         post.Texto,
		Enlace:        post.Enlace,
		FechaTweet:    fecha,
		Likes:         post.Likes,
		Retweets:      post.Retweets,
		Replies:       post.Replies,
		Verified:      post.Verified,
		Categoria:     string(t.Classification.Category),
		EsDeporte:     t.Classification.IsSports,
		Relevancia:    analysis.RelevanceScore,
		EsPolitico:    analysis.IsPolitical,
		CategoriasPol: analysis.Categories,
		RawData:       post.Raw,
	}

	if analysis.IsPolitical {
		metrics.Global.IncrementPoliticalTweets()
		p.enrichSentiment(ctx, run, &record, post)
	}
	if analysis.RelevanceScore >= p.cfg.DeepAnalysisThreshold {
		p.enrichEntities(ctx, run, &record, post, t.Query)
	}

	if p.store != nil {
		if err := p.store.SaveTweet(record); err != nil {
			return false, err
		}
	}
	metrics.Global.IncrementTweetsSaved()
	run.AddTweetSaved()
	return analysis.IsPolitical, nil
}

// enrichSentiment attaches the AI sentiment pass when the guard allows it.
// The default neutral structure is used when the AI is unavailable so the
// persisted row always has a sentiment.
func (p *Pipeline) enrichSentiment(ctx context.Context, run *runlog.Run, record *storage.TweetRecord, post nitter.Post) {
	sentiment := gemini.DefaultSentiment()

	if p.ai != nil {
		estimate := estimateTokens(post.Texto) + 400
		if decision := p.guard.CanProceed(estimate); decision.Allowed {
			sentiment = p.ai.AnalyzeSentiment(ctx, post, record.Categoria)
			usage := p.guard.Record(sentiment.TokensUsed)
			metrics.Global.IncrementAIRequests()
			run.AddAIUsage(sentiment.TokensUsed, usage.CostUSD)
		} else {
			metrics.Global.IncrementAIRequestsBlocked()
		}
	}

	record.Sentimiento = sentiment.Sentimiento
	record.ScoreSent = sentiment.Score
	record.ConfianzaSent = sentiment.Confianza
	record.Emociones = sentiment.Emociones
	record.Intencion = sentiment.Intencion
	record.TokensUsados += sentiment.TokensUsed
}

// enrichEntities runs the deep entity-extraction pass for high-relevance
// posts. An empty extraction is persisted as-is.
func (p *Pipeline) enrichEntities(ctx context.Context, run *runlog.Run, record *storage.TweetRecord, post nitter.Post, trend string) {
	entities := gemini.EmptyEntities()

	if p.ai != nil {
		estimate := estimateTokens(post.Texto) + 600
		if decision := p.guard.CanProceed(estimate); decision.Allowed {
			entities = p.ai.ExtractPoliticalEntities(ctx, post, trend)
			usage := p.guard.Record(entities.TokensUsed)
			metrics.Global.IncrementAIRequests()
			run.AddAIUsage(entities.TokensUsed, usage.CostUSD)
		} else {
			metrics.Global.IncrementAIRequestsBlocked()
		}
	}

	if raw, err := json.Marshal(entities); err == nil {
		record.EntidadesJSON = raw
	}
	record.TokensUsados += entities.TokensUsed
}

// RunNews executes the RSS capture cycle.
func (p *Pipeline) RunNews(ctx context.Context) error {
	run := runlog.Start("news")
	start := time.Now()
	log := logger.With("news")

	sources, err := news.LoadFeeds(p.cfg.FeedsConfigPath)
	if err != nil {
		metrics.Global.SetError(err.Error())
		run.AddFailure(fmt.Sprintf("feeds config: %v", err))
		run.Finish(p.store, runlog.StatusFailed)
		return fmt.Errorf("loading feeds config: %w", err)
	}

	fetcher := news.NewFetcher(p.classifier, p.cfg.NewsMaxAge)
	articles := fetcher.FetchAll(sources)
	if len(articles) == 0 {
		run.AddFailure("no articles from any feed")
		run.Finish(p.store, runlog.StatusFailed)
		return fmt.Errorf("no articles from any feed")
	}

	scraped := 0
	for i := range articles {
		select {
		case <-ctx.Done():
			run.Finish(p.store, runlog.StatusFailed)
			return ctx.Err()
		default:
		}

		// Feeds that only carry a headline get the article body scraped,
		// bounded per run to stay polite with the outlets.
		if articles[i].Resumen == "" && scraped < p.cfg.ScrapeMaxArticles {
			scraped++
			if full, err := scraper.ExtractFullArticle(articles[i].URL); err == nil {
				articles[i].Resumen = summarize(full.Content)
			} else {
				log.Debug("Scrape failed", "url", articles[i].URL, "error", err)
			}
		}

		record := storage.NewsRecord{
			Titulo:       articles[i].Titulo,
			Resumen:      articles[i].Resumen,
			URL:          articles[i].URL,
			Fuente:       articles[i].Fuente,
			Categoria:    string(articles[i].Categoria),
			FechaNoticia: articles[i].Fecha,
		}
		if p.store != nil {
			if err := p.store.SaveNews(record); err != nil {
				run.AddFailure(fmt.Sprintf("save news: %v", err))
				continue
			}
		}
		metrics.Global.IncrementNewsSaved()
		run.AddNewsSaved()
	}

	log.Info("📰 News cycle done", "articles", len(articles), "scraped", scraped)
	metrics.Global.RecordProcessingTime(time.Since(start))
	metrics.Global.SetLastRun()
	run.Finish(p.store, runlog.StatusCompleted)
	return nil
}

// reanalyzeBatchSize bounds one reanalysis run; the cron cadence drains the
// backlog over successive runs.
const reanalyzeBatchSize = 50

// RunReanalyze re-runs sentiment on captured tweets that never got a pass.
func (p *Pipeline) RunReanalyze(ctx context.Context) error {
	run := runlog.Start("reanalyze")
	log := logger.With("reanalyze")

	if p.ai == nil {
		run.Finish(p.store, runlog.StatusFailed)
		return fmt.Errorf("reanalysis requires a Gemini API key")
	}
	if p.store == nil {
		run.Finish(p.store, runlog.StatusFailed)
		return fmt.Errorf("reanalysis requires a database")
	}

	pending, err := p.store.TweetsPendingSentiment(reanalyzeBatchSize)
	if err != nil {
		run.AddFailure(fmt.Sprintf("loading backlog: %v", err))
		run.Finish(p.store, runlog.StatusFailed)
		return fmt.Errorf("loading reanalysis backlog: %w", err)
	}
	log.Info("🧠 Reanalysis backlog", "pending", len(pending))

	for _, t := range pending {
		select {
		case <-ctx.Done():
			run.Finish(p.store, runlog.StatusFailed)
			return ctx.Err()
		default:
		}

		estimate := estimateTokens(t.Texto) + 400
		decision := p.guard.CanProceed(estimate)
		if !decision.Allowed {
			metrics.Global.IncrementAIRequestsBlocked()
			if decision.Reason == costguard.ReasonDailyLimit {
				log.Warn("Daily cost ceiling reached, stopping backlog drain")
				break
			}
			// Minute ceiling: wait out the window and retry this tweet.
			select {
			case <-ctx.Done():
				run.Finish(p.store, runlog.StatusFailed)
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		post := nitter.Post{
			TweetID:  t.TweetID,
			Usuario:  t.Usuario,
			Texto:    t.Texto,
			Likes:    t.Likes,
			Retweets: t.Retweets,
			Replies:  t.Replies,
			Verified: t.Verified,
		}
		sentiment := p.ai.AnalyzeSentiment(ctx, post, t.Categoria)
		usage := p.guard.Record(sentiment.TokensUsed)
		metrics.Global.IncrementAIRequests()
		run.AddAIUsage(sentiment.TokensUsed, usage.CostUSD)

		err := p.store.UpdateSentiment(t.TweetID, sentiment.Sentimiento, sentiment.Score,
			sentiment.Confianza, sentiment.Emociones, sentiment.Intencion, sentiment.TokensUsed)
		if err != nil {
			run.AddFailure(fmt.Sprintf("update %s: %v", t.TweetID, err))
			continue
		}
		run.AddTweetSaved()
	}

	metrics.Global.SetLastRun()
	run.Finish(p.store, runlog.StatusCompleted)
	return nil
}

// estimateTokens is the rough chars/4 heuristic used for pre-call cost
// estimates. Actual usage from the API replaces it in accounting.
func estimateTokens(text string) int {
	return len(text)/4 + 100
}

// summarize trims scraped article bodies to a storable summary, cutting at a
// sentence boundary when one exists and never in the middle of a rune.
func summarize(content string) string {
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}
	content = strings.TrimSpace(content)
	if len(content) <= 600 {
		return content
	}
	limit := 600
	for limit > 0 && !utf8.RuneStart(content[limit]) {
		limit--
	}
	cut := content[:limit]
	if idx := strings.LastIndexByte(cut, '.'); idx > 0 {
		return cut[:idx+1]
	}
	return cut + "..."
}
