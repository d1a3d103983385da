package trends

import "testing"

func defaultTestClassifier() *Classifier {
	return NewClassifier(defaultLexicon)
}

func TestCategorize_PoliticsWinsOverLaterCategories(t *testing.T) {
	c := defaultTestClassifier()
	got := c.Categorize("El Congreso debate la nueva ley de salud")
	if got != CategoryPolitics {
		t.Errorf("got %q, want %q", got, CategoryPolitics)
	}
}

func TestCategorize_Economic(t *testing.T) {
	c := defaultTestClassifier()
	if got := c.Categorize("Sube el precio del dólar"); got != CategoryEconomic {
		t.Errorf("got %q, want %q", got, CategoryEconomic)
	}
}

func TestCategorize_FallsBackToGeneral(t *testing.T) {
	c := defaultTestClassifier()
	if got := c.Categorize("FelizViernes"); got != CategoryGeneral {
		t.Errorf("got %q, want %q", got, CategoryGeneral)
	}
}

func TestIsSports_KeywordMatch(t *testing.T) {
	c := defaultTestClassifier()
	cases := map[string]bool{
		"Municipal vs Comunicaciones": true,
		"La Selecta clasifica":        true,
		"Congreso aprueba decreto":    false,
		"Xelajú campeón":              true,
	}
	for raw, want := range cases {
		if got := c.IsSports(raw); got != want {
			t.Errorf("IsSports(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestIsSports_HashtagWithFollowerCount(t *testing.T) {
	c := defaultTestClassifier()
	if !c.IsSports("#Soccer839K") {
		t.Errorf("hashtag+count pattern should classify as sports")
	}
	if c.IsSports("#Justicia") {
		t.Errorf("plain hashtag should not classify as sports")
	}
}

func TestIsSports_ShortKeywordNeedsWordBoundary(t *testing.T) {
	c := defaultTestClassifier()
	// "f1" must not fire inside unrelated words
	if c.IsSports("definitivamente") {
		t.Errorf("short keyword matched inside a word")
	}
	if !c.IsSports("Gran premio de F1") {
		t.Errorf("standalone short keyword should match")
	}
}

func TestLoadLexicon_MissingFileUsesDefaults(t *testing.T) {
	lex, err := LoadLexicon("testdata/does-not-exist.yaml")
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if len(lex.Sports) == 0 || len(lex.Politics) == 0 {
		t.Errorf("expected default lexicon to be returned")
	}
}
