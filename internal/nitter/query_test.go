package nitter

import (
	"strings"
	"testing"
	"time"
)

func TestExtractMentions_Deduplicates(t *testing.T) {
	got := ExtractMentions("@CongresoGuate responde a @CongresoGuate y @MPguatemala")
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 unique handles", got)
	}
	if got[0] != "CongresoGuate" || got[1] != "MPguatemala" {
		t.Errorf("got %v", got)
	}
}

func TestExtractHashtags_KeepsAccents(t *testing.T) {
	got := ExtractHashtags("Marchan por #JusticiaYa y #EleccionesGT, otra vez #JusticiaYa")
	if len(got) != 2 {
		t.Errorf("got %v, want 2 unique tags", got)
	}
}

func TestExtractAcronyms_WhitelistOnly(t *testing.T) {
	got := ExtractAcronyms("El MP y la PNC investigan; la ONU observa y FULANO grita")
	if len(got) != 2 {
		t.Fatalf("got %v, want only MP and PNC", got)
	}
	if got[0] != "MP" || got[1] != "PNC" {
		t.Errorf("got %v", got)
	}
}

func TestExtractKeywords_SkipsStopWordsAndShortTokens(t *testing.T) {
	got := ExtractKeywords("El estado de calamidad en la zona 1, ya aprobado", 0)
	want := []string{"estado", "calamidad", "zona", "aprobado"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractKeywords_CapApplied(t *testing.T) {
	got := ExtractKeywords("congreso aprueba reforma fiscal urgente", 2)
	if len(got) != 2 {
		t.Errorf("got %v, want cap of 2", got)
	}
}

func TestExtractYears(t *testing.T) {
	got := ExtractYears("Las elecciones de 2023 frente a las de 1999, rumbo a 2027")
	if len(got) != 3 {
		t.Errorf("got %v, want 3 years", got)
	}
}

func TestSignalTerms_PriorityOrderAndPrefixes(t *testing.T) {
	texts := []string{
		"El @MPguatemala presenta el informe #CasoFiscal",
		"La PNC actuó en 2023, dice @MPguatemala",
	}
	got := SignalTerms(texts, 0)
	want := []string{"@MPguatemala", "#CasoFiscal", "MP", "PNC", "2023"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSignalTerms_CapApplied(t *testing.T) {
	texts := []string{"@uno @dos @tres #cuatro #cinco MP TSE 2023 2024"}
	got := SignalTerms(texts, 3)
	if len(got) != 3 {
		t.Fatalf("got %v, want cap of 3", got)
	}
	if got[0] != "@uno" || got[1] != "@dos" || got[2] != "@tres" {
		t.Errorf("got %v", got)
	}
}

func TestSignalTerms_NoSignals(t *testing.T) {
	if got := SignalTerms([]string{"sin señales relevantes aquí"}, 6); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestVariants_SingleWord(t *testing.T) {
	got := Variants("Congreso")
	if len(got) != 1 || got[0] != "Congreso" {
		t.Errorf("got %v, want just the raw term", got)
	}
}

func TestVariants_AccentedTermAddsASCIIForm(t *testing.T) {
	got := Variants("Xelajú")
	if len(got) != 2 {
		t.Fatalf("got %v, want raw and ascii forms", got)
	}
	if got[1] != "Xelaju" {
		t.Errorf("got %q, want diacritics stripped", got[1])
	}
}

func TestVariants_MultiWordAddsHashtagAndQuoted(t *testing.T) {
	got := Variants("Estado de Calamidad")
	want := map[string]bool{
		"Estado de Calamidad":   true,
		"#EstadodeCalamidad":    true,
		`"Estado de Calamidad"`: true,
	}
	for w := range want {
		found := false
		for _, v := range got {
			if v == w {
				found = true
			}
		}
		if !found {
			t.Errorf("variant %q missing from %v", w, got)
		}
	}
}

func TestVariants_HashtagNotReExpanded(t *testing.T) {
	got := Variants("#JusticiaYa")
	for _, v := range got {
		if strings.HasPrefix(v, "##") || strings.HasPrefix(v, `"`) {
			t.Errorf("hashtag input should not gain %q", v)
		}
	}
}

func TestBuildMultipolarQuery_Shape(t *testing.T) {
	now := time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)
	got := BuildMultipolarQuery([]string{"Congreso"}, []string{"arevalo"}, 1, now)

	if !strings.HasPrefix(got, "(") {
		t.Fatalf("query must start with an OR group: %q", got)
	}
	if !strings.Contains(got, "Congreso OR arevalo") {
		t.Errorf("terms not OR-joined: %q", got)
	}
	if !strings.HasSuffix(got, ") lang:es since:2025-07-22") {
		t.Errorf("missing language/recency filters: %q", got)
	}
}

func TestBuildMultipolarQuery_CapsTerms(t *testing.T) {
	now := time.Now()
	base := []string{"Estado de Calamidad", "Paro Nacional", "Nueva Constitución", "Reforma Fiscal"}
	actors := []string{"arevalo", "giammattei", "porras", "sandoval"}
	got := BuildMultipolarQuery(base, actors, 1, now)

	inner := got[strings.Index(got, "(")+1 : strings.LastIndex(got, ")")]
	terms := strings.Split(inner, " OR ")
	if len(terms) > 14 {
		t.Errorf("got %d terms, cap is 14: %q", len(terms), got)
	}
}

func TestBuildMultipolarQuery_EmptyInput(t *testing.T) {
	if got := BuildMultipolarQuery(nil, nil, 1, time.Now()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
