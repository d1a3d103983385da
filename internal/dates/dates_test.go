package dates

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)

func TestResolve_RelativeHours(t *testing.T) {
	got := Resolve("2h", "", testNow)
	want := testNow.Add(-2 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolve_RelativeDaysAndWeeks(t *testing.T) {
	cases := map[string]time.Time{
		"3d": testNow.AddDate(0, 0, -3),
		"1w": testNow.AddDate(0, 0, -7),
		"1y": testNow.AddDate(-1, 0, 0),
	}
	for raw, want := range cases {
		if got := Resolve(raw, "", testNow); !got.Equal(want) {
			t.Errorf("Resolve(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestResolve_DotSeparatorAndUTCSuffix(t *testing.T) {
	got := Resolve("Jun 10, 2025 · 7:40 PM UTC", "", testNow)
	want := time.Date(2025, 6, 10, 19, 40, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolve_MicrosecondTimestamp(t *testing.T) {
	got := Resolve("2025-07-23T06:17:41.248063", "", testNow)
	want := time.Date(2025, 7, 23, 6, 17, 41, 248_000_000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolve_BareISOTreatedAsUTC(t *testing.T) {
	got := Resolve("2025-07-22T00:00:00", "", testNow)
	want := time.Date(2025, 7, 22, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolve_PlaceholderFallsBackToNow(t *testing.T) {
	for _, raw := range []string{"recent", "Just Now", "hace poco", ""} {
		if got := Resolve(raw, "", testNow); !got.Equal(testNow) {
			t.Errorf("Resolve(%q) = %v, want now", raw, got)
		}
	}
}

func TestResolve_FarFutureDateRejected(t *testing.T) {
	future := testNow.AddDate(0, 0, 2).Format(time.RFC3339)
	got := Resolve(future, "", testNow)
	if !got.Equal(testNow) {
		t.Errorf("future date should fall back to now, got %v", got)
	}
}

func TestResolve_FutureDateFallsBackToSnowflake(t *testing.T) {
	future := testNow.AddDate(0, 0, 2).Format(time.RFC3339)
	got := Resolve(future, "1931250420254380159", testNow)
	derived, ok := FromSnowflake("1931250420254380159")
	if !ok {
		t.Fatalf("expected snowflake derivation to succeed")
	}
	if !got.Equal(derived) {
		t.Errorf("got %v, want snowflake-derived %v", got, derived)
	}
}

func TestFromSnowflake_PlausibleYear(t *testing.T) {
	got, ok := FromSnowflake("1931250420254380159")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() < 2010 || got.Year() > 2035 {
		t.Errorf("derived year %d outside plausible range", got.Year())
	}
}

func TestFromSnowflake_RejectsGarbage(t *testing.T) {
	for _, id := range []string{"", "abc", "0", "-5"} {
		if _, ok := FromSnowflake(id); ok {
			t.Errorf("FromSnowflake(%q) should be rejected", id)
		}
	}
}
