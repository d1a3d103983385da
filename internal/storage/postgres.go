package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/standatpd/pulsetrends/internal/logger"
)

// Store persists captured tweets, news articles and execution logs in
// PostgreSQL.
type Store struct {
	db *sql.DB
}

// TweetRecord is one captured tweet with its full analysis, ready to persist.
type TweetRecord struct {
	TweetID       string
	TrendClean    string
	TrendOriginal string
	Usuario       string
	Texto         string
	Enlace        string
	FechaTweet    time.Time
	Likes         int
	Retweets      int
	Replies       int
	Verified      bool
	Categoria     string
	EsDeporte     bool
	Relevancia    int
	EsPolitico    bool
	CategoriasPol []string
	Sentimiento   string
	ScoreSent     float64
	ConfianzaSent float64
	Emociones     []string
	Intencion     string
	EntidadesJSON json.RawMessage
	TokensUsados  int
	RawData       json.RawMessage
}

// NewsRecord is one RSS/scraped article ready to persist.
type NewsRecord struct {
	Titulo       string
	Resumen      string
	URL          string
	Fuente       string
	Categoria    string
	FechaNoticia time.Time
}

// ExecutionRecord is persisted once per cron run by the run logger.
type ExecutionRecord struct {
	ExecutionID  string
	Script       string
	Status       string
	StartedAt    time.Time
	FinishedAt   time.Time
	TweetsSaved  int
	TrendsFound  int
	Failures     int
	AITokensUsed int
	AICostUSD    float64
	Summary      json.RawMessage
}

// New connects to PostgreSQL and ensures the schema exists.
func New(connectionString string) (*Store, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	logger.Info("✅ PostgreSQL connected")
	return s, nil
}

// initSchema creates the necessary tables if they don't exist
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trending_tweets (
		id SERIAL PRIMARY KEY,
		tweet_id VARCHAR(64) UNIQUE NOT NULL,
		trend_clean TEXT NOT NULL,
		trend_original TEXT,
		usuario TEXT,
		texto TEXT NOT NULL,
		enlace TEXT,
		fecha_tweet TIMESTAMPTZ NOT NULL,
		likes INTEGER DEFAULT 0,
		retweets INTEGER DEFAULT 0,
		replies INTEGER DEFAULT 0,
		verified BOOLEAN DEFAULT FALSE,
		categoria VARCHAR(50),
		es_deporte BOOLEAN DEFAULT FALSE,
		relevancia INTEGER DEFAULT 0,
		es_politico BOOLEAN DEFAULT FALSE,
		categorias_politicas TEXT[],
		sentimiento VARCHAR(20),
		score_sentimiento DOUBLE PRECISION,
		confianza_sentimiento DOUBLE PRECISION,
		emociones_detectadas TEXT[],
		intencion_comunicativa VARCHAR(40),
		analisis_entidades JSONB,
		tokens_usados INTEGER DEFAULT 0,
		raw_data JSONB,
		fecha_captura TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_trending_tweets_tweet_id ON trending_tweets(tweet_id);
	CREATE INDEX IF NOT EXISTS idx_trending_tweets_fecha ON trending_tweets(fecha_tweet);
	CREATE INDEX IF NOT EXISTS idx_trending_tweets_trend ON trending_tweets(trend_clean);

	CREATE TABLE IF NOT EXISTS news (
		id SERIAL PRIMARY KEY,
		titulo TEXT NOT NULL,
		resumen TEXT,
		url TEXT NOT NULL,
		fuente VARCHAR(100),
		categoria VARCHAR(50),
		fecha_noticia TIMESTAMPTZ NOT NULL,
		fecha_captura TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (url, fecha_noticia)
	);

	CREATE INDEX IF NOT EXISTS idx_news_fecha ON news(fecha_noticia);
	CREATE INDEX IF NOT EXISTS idx_news_categoria ON news(categoria);

	CREATE TABLE IF NOT EXISTS system_execution_logs (
		id SERIAL PRIMARY KEY,
		execution_id UUID UNIQUE NOT NULL,
		script VARCHAR(50) NOT NULL,
		status VARCHAR(20) NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		tweets_saved INTEGER DEFAULT 0,
		trends_found INTEGER DEFAULT 0,
		failures INTEGER DEFAULT 0,
		ai_tokens_used INTEGER DEFAULT 0,
		ai_cost_usd DOUBLE PRECISION DEFAULT 0,
		summary JSONB
	);

	CREATE INDEX IF NOT EXISTS idx_execution_logs_script ON system_execution_logs(script, started_at);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}

	return nil
}

// TweetExists reports whether a tweet id was already captured. Errors are
// treated as "not seen" so a transient DB hiccup degrades to a duplicate
// upsert instead of dropping data.
func (s *Store) TweetExists(tweetID string) bool {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM trending_tweets WHERE tweet_id = $1`, tweetID).Scan(&count)
	if err != nil {
		logger.Warn("⚠️ Error checking duplicate tweet", "tweet_id", tweetID, "error", err)
		return false
	}
	return count > 0
}

// SaveTweet upserts a tweet keyed by tweet_id. Re-captures refresh the
// engagement counters and analysis but keep the original capture date.
func (s *Store) SaveTweet(t TweetRecord) error {
	query := `
		INSERT INTO trending_tweets (
			tweet_id, trend_clean, trend_original, usuario, texto, enlace,
			fecha_tweet, likes, retweets, replies, verified,
			categoria, es_deporte, relevancia, es_politico, categorias_politicas,
			sentimiento, score_sentimiento, confianza_sentimiento,
			emociones_detectadas, intencion_comunicativa,
			analisis_entidades, tokens_usados, raw_data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (tweet_id) DO UPDATE SET
			likes = EXCLUDED.likes,
			retweets = EXCLUDED.retweets,
			replies = EXCLUDED.replies,
			relevancia = EXCLUDED.relevancia,
			sentimiento = EXCLUDED.sentimiento,
			score_sentimiento = EXCLUDED.score_sentimiento,
			confianza_sentimiento = EXCLUDED.confianza_sentimiento,
			emociones_detectadas = EXCLUDED.emociones_detectadas,
			intencion_comunicativa = EXCLUDED.intencion_comunicativa,
			analisis_entidades = EXCLUDED.analisis_entidades,
			tokens_usados = EXCLUDED.tokens_usados
	`

	_, err := s.db.Exec(query,
		t.TweetID, t.TrendClean, t.TrendOriginal, t.Usuario, t.Texto, t.Enlace,
		t.FechaTweet, t.Likes, t.Retweets, t.Replies, t.Verified,
		t.Categoria, t.EsDeporte, t.Relevancia, t.EsPolitico, pqStringArray(t.CategoriasPol),
		nullString(t.Sentimiento), t.ScoreSent, t.ConfianzaSent,
		pqStringArray(t.Emociones), nullString(t.Intencion),
		nullJSON(t.EntidadesJSON), t.TokensUsados, nullJSON(t.RawData),
	)
	if err != nil {
		return fmt.Errorf("failed to save tweet %s: %v", t.TweetID, err)
	}
	return nil
}

// SaveNews upserts an article keyed by (url, fecha_noticia) so republished
// articles on a new date are captured again without duplicating same-day runs.
func (s *Store) SaveNews(n NewsRecord) error {
	query := `
		INSERT INTO news (titulo, resumen, url, fuente, categoria, fecha_noticia)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (url, fecha_noticia) DO UPDATE SET
			titulo = EXCLUDED.titulo,
			resumen = EXCLUDED.resumen,
			categoria = EXCLUDED.categoria
	`
	_, err := s.db.Exec(query, n.Titulo, n.Resumen, n.URL, n.Fuente, n.Categoria, n.FechaNoticia)
	if err != nil {
		return fmt.Errorf("failed to save news %q: %v", n.URL, err)
	}
	return nil
}

// SaveExecution persists one run summary for the monitoring dashboard.
func (s *Store) SaveExecution(e ExecutionRecord) error {
	query := `
		INSERT INTO system_execution_logs (
			execution_id, script, status, started_at, finished_at,
			tweets_saved, trends_found, failures, ai_tokens_used, ai_cost_usd, summary
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (execution_id) DO UPDATE SET
			status = EXCLUDED.status,
			finished_at = EXCLUDED.finished_at,
			tweets_saved = EXCLUDED.tweets_saved,
			trends_found = EXCLUDED.trends_found,
			failures = EXCLUDED.failures,
			ai_tokens_used = EXCLUDED.ai_tokens_used,
			ai_cost_usd = EXCLUDED.ai_cost_usd,
			summary = EXCLUDED.summary
	`
	_, err := s.db.Exec(query,
		e.ExecutionID, e.Script, e.Status, e.StartedAt, nullTime(e.FinishedAt),
		e.TweetsSaved, e.TrendsFound, e.Failures, e.AITokensUsed, e.AICostUSD,
		nullJSON(e.Summary),
	)
	if err != nil {
		return fmt.Errorf("failed to save execution log: %v", err)
	}
	return nil
}

// StoredTweet is the subset of a persisted tweet needed to re-run sentiment
// analysis on it.
type StoredTweet struct {
	TweetID   string
	Usuario   string
	Texto     string
	Likes     int
	Retweets  int
	Replies   int
	Verified  bool
	Categoria string
}

// TweetsPendingSentiment returns captured tweets that never got a sentiment
// pass, oldest first.
func (s *Store) TweetsPendingSentiment(limit int) ([]StoredTweet, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT tweet_id, usuario, texto, likes, retweets, replies, verified, COALESCE(categoria, '')
		FROM trending_tweets
		WHERE sentimiento IS NULL
		ORDER BY fecha_captura ASC
		LIMIT $1
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StoredTweet
	for rows.Next() {
		var t StoredTweet
		err := rows.Scan(&t.TweetID, &t.Usuario, &t.Texto, &t.Likes, &t.Retweets, &t.Replies, &t.Verified, &t.Categoria)
		if err != nil {
			logger.Warn("⚠️ Error scanning row", "error", err)
			continue
		}
		items = append(items, t)
	}

	return items, rows.Err()
}

// UpdateSentiment writes a sentiment pass back onto an existing tweet.
func (s *Store) UpdateSentiment(tweetID, sentimiento string, score, confianza float64, emociones []string, intencion string, tokens int) error {
	query := `
		UPDATE trending_tweets SET
			sentimiento = $2,
			score_sentimiento = $3,
			confianza_sentimiento = $4,
			emociones_detectadas = $5,
			intencion_comunicativa = $6,
			tokens_usados = tokens_usados + $7
		WHERE tweet_id = $1
	`
	_, err := s.db.Exec(query, tweetID, sentimiento, score, confianza, pqStringArray(emociones), nullString(intencion), tokens)
	if err != nil {
		return fmt.Errorf("failed to update sentiment for %s: %v", tweetID, err)
	}
	return nil
}

// GetStats returns storage statistics for the monitoring endpoint.
func (s *Store) GetStats() (map[string]int, error) {
	stats := make(map[string]int)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM trending_tweets`).Scan(&total); err != nil {
		return nil, err
	}
	stats["total_tweets"] = total

	var political int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM trending_tweets WHERE es_politico`).Scan(&political); err != nil {
		return nil, err
	}
	stats["political_tweets"] = political

	var newsCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM news`).Scan(&newsCount); err != nil {
		return nil, err
	}
	stats["total_news"] = newsCount

	rows, err := s.db.Query(`
		SELECT categoria, COUNT(*)
		FROM trending_tweets
		WHERE categoria IS NOT NULL
		GROUP BY categoria
	`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var categoria string
			var count int
			if err := rows.Scan(&categoria, &count); err == nil {
				stats["categoria_"+categoria] = count
			}
		}
	}

	return stats, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
