package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/standatpd/pulsetrends/internal/config"
	"github.com/standatpd/pulsetrends/internal/logger"
	"github.com/standatpd/pulsetrends/internal/nitter"
	"github.com/standatpd/pulsetrends/internal/runlog"
	"github.com/standatpd/pulsetrends/internal/trends"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func TestSummarize_ShortContentUnchanged(t *testing.T) {
	in := "Una nota corta."
	if got := summarize(in); got != in {
		t.Errorf("got %q", got)
	}
}

func TestSummarize_CutsAtSentenceBoundary(t *testing.T) {
	sentence := "Esta es una frase de relleno para la nota. "
	long := strings.Repeat(sentence, 30)

	got := summarize(long)
	if len(got) > 600 {
		t.Fatalf("summary too long: %d", len(got))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("summary should end at a sentence boundary: %q", got[len(got)-20:])
	}
}

func TestSummarize_CollapsesBlankRuns(t *testing.T) {
	in := "uno\n\n\n\n\ndos"
	got := summarize(in)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank runs survived: %q", got)
	}
}

func TestSummarize_CutsOnRuneBoundary(t *testing.T) {
	long := "x" + strings.Repeat("ñ", 400) // byte 600 lands inside a rune

	got := summarize(long)
	if !utf8.ValidString(got) {
		t.Fatalf("summary is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("no sentence boundary available, want ellipsis suffix: %q", got)
	}
}

func TestProcessTrend_BroadensSearchWithPostSignals(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nitter_context" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		call := len(queries)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if call == 1 {
			w.Write([]byte(`{"status": "success", "tweets": [
				{"tweet_id": "1", "usuario": "vecino", "fecha": "2h",
				 "texto": "El gobierno y el congreso responden al @MPguatemala por el #CasoFiscal"}
			]}`))
			return
		}
		w.Write([]byte(`{"status": "success", "tweets": []}`))
	}))
	defer srv.Close()

	cfg := &config.Config{Location: "guatemala", TweetLimit: 15, MinRelevance: 2, DeepAnalysisThreshold: 5}
	p := New(cfg, nil, nitter.NewClient(srv.URL, 5*time.Second), nil, trends.NewClassifier(trends.Lexicon{}))

	run := runlog.Start("trends")
	tr := trends.Trend{Name: "CasoFiscal", Query: "CasoFiscal"}
	p.processTrend(context.Background(), run, tr, &sync.Map{}, logger.With("trends"))

	if len(queries) != 2 {
		t.Fatalf("got %d search calls, want an initial and a broadened one", len(queries))
	}
	if strings.Contains(queries[0], "@MPguatemala") {
		t.Errorf("initial query should not carry post signals: %q", queries[0])
	}
	for _, signal := range []string{"@MPguatemala", "#CasoFiscal"} {
		if !strings.Contains(queries[1], signal) {
			t.Errorf("broadened query missing %q: %q", signal, queries[1])
		}
	}
}

func TestEstimateTokens_GrowsWithLength(t *testing.T) {
	short := estimateTokens("hola")
	long := estimateTokens(strings.Repeat("palabra ", 100))
	if long <= short {
		t.Errorf("estimate should grow with text length: %d vs %d", short, long)
	}
	if short <= 0 {
		t.Errorf("estimate must stay positive, got %d", short)
	}
}
