package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/standatpd/pulsetrends/internal/config"
	"github.com/standatpd/pulsetrends/internal/gemini"
	"github.com/standatpd/pulsetrends/internal/logger"
	"github.com/standatpd/pulsetrends/internal/metrics"
	"github.com/standatpd/pulsetrends/internal/nitter"
	"github.com/standatpd/pulsetrends/internal/pipeline"
	"github.com/standatpd/pulsetrends/internal/storage"
	"github.com/standatpd/pulsetrends/internal/trends"
)

func main() {
	mode := flag.String("mode", "trends", "run mode: trends, news or reanalyze")
	flag.Parse()

	// .env is optional; cron environments inject real env vars.
	_ = godotenv.Load()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("❌ Invalid configuration", "error", err)
		os.Exit(1)
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("❌ Database unavailable", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var ai *gemini.Client
	if cfg.GeminiAPIKey != "" {
		ai, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("⚠️ Gemini unavailable, AI analysis disabled", "error", err)
			ai = nil
		} else {
			defer ai.Close()
		}
	} else {
		logger.Warn("⚠️ GEMINI_API_KEY not set, AI analysis disabled")
	}

	lexicon, err := trends.LoadLexicon(cfg.KeywordsConfigPath)
	if err != nil {
		logger.Error("❌ Keywords config unreadable", "path", cfg.KeywordsConfigPath, "error", err)
		os.Exit(1)
	}
	classifier := trends.NewClassifier(lexicon)

	api := nitter.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	p := pipeline.New(cfg, store, api, ai, classifier)

	switch *mode {
	case "trends":
		err = p.RunTrends(ctx)
	case "news":
		err = p.RunNews(ctx)
	case "reanalyze":
		err = p.RunReanalyze(ctx)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}

	if err != nil {
		logger.Error("❌ Run failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("Starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("Monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !metrics.Global.Healthy() {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
