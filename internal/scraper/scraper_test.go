package scraper

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractFullArticle_GenericSelectors(t *testing.T) {
	page := `<html><head><title>Titular</title></head><body>
		<h1>Titular de la nota</h1>
		<article>
			<p>Primer párrafo con suficiente contenido informativo.</p>
			<p>Segundo párrafo que también aporta contexto.</p>
			<p>ok</p>
		</article>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := ExtractFullArticle(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Titular de la nota" {
		t.Errorf("got title %q", got.Title)
	}
	if !strings.Contains(got.Content, "Primer párrafo") || !strings.Contains(got.Content, "Segundo párrafo") {
		t.Errorf("paragraphs missing: %q", got.Content)
	}
	// Very short fragments are filtered out
	if strings.Contains(got.Content, "\nok") || got.Content == "ok" {
		t.Errorf("short fragment should be dropped: %q", got.Content)
	}
}

func TestExtractFullArticle_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := ExtractFullArticle(srv.URL); err == nil {
		t.Errorf("expected error for HTTP 404")
	}
}

func TestExtractFullArticle_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><div>nada</div></body></html>"))
	}))
	defer srv.Close()

	if _, err := ExtractFullArticle(srv.URL); err == nil {
		t.Errorf("expected error when no selectors match")
	}
}

func TestCleanContent_DropsBoilerplate(t *testing.T) {
	in := "Párrafo real de la nota.\nLea también: otra nota\nSegundo párrafo real.\nSuscríbete a nuestro boletín"
	got := cleanContent(in)
	if strings.Contains(got, "Lea también") || strings.Contains(got, "Suscríbete") {
		t.Errorf("boilerplate survived: %q", got)
	}
	if !strings.Contains(got, "Párrafo real") || !strings.Contains(got, "Segundo párrafo") {
		t.Errorf("real content lost: %q", got)
	}
}
