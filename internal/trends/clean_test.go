package trends

import "testing"

func TestClean_StripsRankHashtagAndCount(t *testing.T) {
	got, ok := Clean("1. #Taylor839K")
	if !ok {
		t.Fatalf("expected ok for %q", "1. #Taylor839K")
	}
	if got != "Taylor" {
		t.Errorf("got %q, want %q", got, "Taylor")
	}
}

func TestClean_StripsParenthesizedSuffix(t *testing.T) {
	got, ok := Clean("Congreso (12K tweets)")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != "Congreso" {
		t.Errorf("got %q, want %q", got, "Congreso")
	}
}

func TestClean_KeepsPlainTerm(t *testing.T) {
	got, ok := Clean("Bernardo Arévalo")
	if !ok || got != "Bernardo Arévalo" {
		t.Errorf("got %q ok=%v, want unchanged term", got, ok)
	}
}

func TestClean_RejectsTooShortResult(t *testing.T) {
	cases := []string{"a", "#1", "42", "  ", "3. 9K"}
	for _, raw := range cases {
		if got, ok := Clean(raw); ok {
			t.Errorf("Clean(%q) = %q, want rejection", raw, got)
		}
	}
}

func TestClean_OnlyFirstHashRemoved(t *testing.T) {
	got, ok := Clean("##Doble")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got != "#Doble" {
		t.Errorf("got %q, want %q", got, "#Doble")
	}
}

func TestClean_Idempotent(t *testing.T) {
	first, ok := Clean("2. #JusticiaYa (trending)")
	if !ok {
		t.Fatalf("expected ok")
	}
	second, ok := Clean(first)
	if !ok || second != first {
		t.Errorf("second pass changed result: %q -> %q", first, second)
	}
}
