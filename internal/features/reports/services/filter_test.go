package services

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestResolveWindow(t *testing.T) {
	tests := []struct {
		token      string
		want       time.Duration
		normalized bool
	}{
		{"24h", 24 * time.Hour, false},
		{"3d", 72 * time.Hour, false},
		{"7d", 168 * time.Hour, false},
		{"30d", 720 * time.Hour, false},
		{"90d", 2160 * time.Hour, false},
		{"", 24 * time.Hour, true},
		{"365d", 24 * time.Hour, true},
		{"24H", 24 * time.Hour, true},
		{"1 day; DROP TABLE reports", 24 * time.Hour, true},
	}
	for _, tt := range tests {
		got, normalized := ResolveWindow(tt.token)
		if got.Duration != tt.want || normalized != tt.normalized {
			t.Errorf("ResolveWindow(%q) = %v, %v; want %v, %v", tt.token, got.Duration, normalized, tt.want, tt.normalized)
		}
	}
}

func TestWindowsIsACopy(t *testing.T) {
	list := Windows()
	list[0].Duration = time.Minute

	if w, _ := ResolveWindow("24h"); w.Duration != 24*time.Hour {
		t.Errorf("mutating Windows() changed the allow-list: %v", w.Duration)
	}
}

func TestCompileFilterWindowOnly(t *testing.T) {
	w, _ := ResolveWindow("7d")
	f := CompileFilter(FilterParams{Window: w}, testNow)

	if want := []string{"published_at >= $1"}; !reflect.DeepEqual(f.Clauses, want) {
		t.Errorf("clauses = %v, want %v", f.Clauses, want)
	}
	if len(f.Args) != 1 || !f.Args[0].(time.Time).Equal(testNow.Add(-7*24*time.Hour)) {
		t.Errorf("args = %v, want [now-7d]", f.Args)
	}
	if f.Where() != "WHERE published_at >= $1" {
		t.Errorf("Where() = %q", f.Where())
	}
	if f.Placeholder(1) != "$2" || f.Placeholder(2) != "$3" {
		t.Errorf("placeholders = %s %s, want $2 $3", f.Placeholder(1), f.Placeholder(2))
	}
}

func TestCompileFilterSeverityAll(t *testing.T) {
	w, _ := ResolveWindow("24h")

	for _, sev := range []string{"all", "Critical", "urgent"} {
		f := CompileFilter(FilterParams{Severity: sev, Window: w}, testNow)
		if len(f.Clauses) != 1 {
			t.Errorf("severity %q: clauses = %v, want the window only", sev, f.Clauses)
		}
		if normalized := len(f.Normalized) == 1; normalized == (sev == "all") {
			t.Errorf("severity %q: normalized = %v", sev, f.Normalized)
		}
	}
}

func TestCompileFilterAllClauses(t *testing.T) {
	w, _ := ResolveWindow("24h")
	f := CompileFilter(FilterParams{
		Text:     "XSS_100%",
		Severity: "critical",
		Platform: "Bugcrowd",
		Window:   w,
	}, testNow)

	if len(f.Clauses) != 4 || len(f.Args) != 4 {
		t.Fatalf("got %d clauses and %d args, want 4 and 4", len(f.Clauses), len(f.Args))
	}
	if f.Clauses[1] != "severity = $2" || f.Args[1] != "critical" {
		t.Errorf("severity clause = %q %v", f.Clauses[1], f.Args[1])
	}
	if f.Clauses[2] != "platform = $3" || f.Args[2] != "Bugcrowd" {
		t.Errorf("platform clause = %q %v", f.Clauses[2], f.Args[2])
	}
	if strings.Count(f.Clauses[3], "$4") != 3 {
		t.Errorf("text clause should reference $4 three times: %q", f.Clauses[3])
	}
	if f.Args[3] != `%XSS\_100\%%` {
		t.Errorf("text arg = %q, want escaped pattern", f.Args[3])
	}
	if len(f.Normalized) != 0 {
		t.Errorf("normalized = %v, want none", f.Normalized)
	}
}

func TestCompileFilterNeverInterpolatesInput(t *testing.T) {
	hostile := "x' OR '1'='1"
	w, _ := ResolveWindow(hostile)
	f := CompileFilter(FilterParams{Text: hostile, Platform: hostile, Severity: hostile, Window: w}, testNow)

	where := f.Where()
	if strings.Contains(strings.ToLower(where), "or '1'='1") {
		t.Errorf("user input leaked into SQL: %s", where)
	}
	if !reflect.DeepEqual(f.Normalized, []string{"severity"}) {
		t.Errorf("normalized = %v, want [severity]", f.Normalized)
	}
	for _, clause := range f.Clauses {
		if strings.HasPrefix(clause, "severity") {
			t.Errorf("unknown severity produced a clause: %q", clause)
		}
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		raw        string
		want       int
		normalized bool
	}{
		{"", 1, false},
		{"1", 1, false},
		{"7", 7, false},
		{"0", 1, true},
		{"-3", 1, true},
		{"abc", 1, true},
		{"2.5", 1, true},
	}
	for _, tt := range tests {
		got, normalized := NormalizePage(tt.raw)
		if got != tt.want || normalized != tt.normalized {
			t.Errorf("NormalizePage(%q) = %d, %v; want %d, %v", tt.raw, got, normalized, tt.want, tt.normalized)
		}
	}
}

func TestNormalizePageSize(t *testing.T) {
	tests := []struct {
		raw        string
		want       int
		normalized bool
	}{
		{"", 40, false},
		{"10", 10, false},
		{"200", 200, false},
		{"201", 200, true},
		{"100000", 200, true},
		{"0", 1, true},
		{"-1", 1, true},
		{"lots", 40, true},
	}
	for _, tt := range tests {
		got, normalized := NormalizePageSize(tt.raw, 40, 200)
		if got != tt.want || normalized != tt.normalized {
			t.Errorf("NormalizePageSize(%q) = %d, %v; want %d, %v", tt.raw, got, normalized, tt.want, tt.normalized)
		}
	}
}
