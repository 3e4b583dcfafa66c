package comparator

import (
	"strings"
	"testing"

	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

func passed(ms float64) timing.Result[int] {
	return timing.Result[int]{ElapsedMs: ms, Succeeded: true}
}

func failed(ms float64) timing.Result[int] {
	return timing.Result[int]{ElapsedMs: ms, ErrorMessage: "boom"}
}

func TestCompare_DenormalizedFaster(t *testing.T) {
	out := Compare(Default(), OLAP, passed(120), passed(80))

	if !out.Decided {
		t.Fatal("Decided = false, want true")
	}
	if out.Winner != orders.Denormalized {
		t.Errorf("Winner = %s, want denormalized", out.Winner)
	}
	if out.MarginPercent != 33.3 {
		t.Errorf("MarginPercent = %f, want 33.3", out.MarginPercent)
	}
	if out.DeltaMs != 40 {
		t.Errorf("DeltaMs = %f, want 40", out.DeltaMs)
	}
	if out.Margin != "denormalized is 33.3% faster" {
		t.Errorf("Margin = %q", out.Margin)
	}
}

func TestCompare_NormalizedFaster(t *testing.T) {
	out := Compare(Default(), OLTP, passed(4), passed(10))

	if out.Winner != orders.Normalized {
		t.Errorf("Winner = %s, want normalized", out.Winner)
	}
	if out.MarginPercent != 60 {
		t.Errorf("MarginPercent = %f, want 60", out.MarginPercent)
	}
}

func TestCompare_TieIsDeterministic(t *testing.T) {
	for range 10 {
		out := Compare(Default(), OLTP, passed(100), passed(100))
		if out.Winner != orders.Normalized {
			t.Fatalf("Winner = %s, want normalized on tie", out.Winner)
		}
		if out.MarginPercent != 0 {
			t.Fatalf("MarginPercent = %f, want 0", out.MarginPercent)
		}
		if out.Significant {
			t.Fatal("tie should not be significant")
		}
	}
}

func TestCompare_BothZero(t *testing.T) {
	out := Compare(Default(), OLAP, passed(0), passed(0))
	if out.MarginPercent != 0 || out.Winner != orders.Normalized {
		t.Errorf("got winner %s margin %f, want normalized 0", out.Winner, out.MarginPercent)
	}
}

func TestCompare_BelowThreshold(t *testing.T) {
	c := &Comparator{Threshold: 5.0}
	out := Compare(c, OLAP, passed(100), passed(98))

	if out.Winner != orders.Denormalized {
		t.Errorf("Winner = %s, want denormalized (strict comparison)", out.Winner)
	}
	if out.Significant {
		t.Error("2% difference should not be significant at 5% threshold")
	}
	if !strings.Contains(out.Margin, "marginally") {
		t.Errorf("Margin = %q, want marginal wording", out.Margin)
	}
}

func TestCompare_Failures(t *testing.T) {
	tests := []struct {
		name       string
		n, d       timing.Result[int]
		wantMargin string
	}{
		{"normalized failed", failed(3), passed(5), "normalized failed"},
		{"denormalized failed", passed(3), failed(5), "denormalized failed"},
		{"both failed", failed(3), failed(5), "both schemas failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Compare(Default(), OLTP, tt.n, tt.d)
			if out.Decided {
				t.Error("Decided = true, want false")
			}
			if out.Winner != "" {
				t.Errorf("Winner = %q, want empty", out.Winner)
			}
			if out.Margin != tt.wantMargin {
				t.Errorf("Margin = %q, want %q", out.Margin, tt.wantMargin)
			}
			if out.NormalizedMs != tt.n.ElapsedMs || out.DenormalizedMs != tt.d.ElapsedMs {
				t.Error("elapsed times should be carried through on failure")
			}
		})
	}
}

func TestPercentDiff(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{120, 80, 33.3},
		{80, 120, 33.3},
		{100, 100, 0},
		{0, 0, 0},
		{0, 10, 100},
		{1.5, 3, 50},
	}

	for _, tt := range tests {
		got := PercentDiff(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("PercentDiff(%f, %f) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestExplanation_KeyedByWorkloadAndWinner(t *testing.T) {
	seen := map[string]bool{}
	for _, w := range []Workload{OLTP, OLAP} {
		for _, s := range orders.Schemas {
			text := Explanation(w, s)
			if text == "" {
				t.Errorf("no explanation for (%s, %s)", w, s)
			}
			if seen[text] {
				t.Errorf("explanation for (%s, %s) is not distinct", w, s)
			}
			seen[text] = true
		}
	}
}

func TestExplanation_Static(t *testing.T) {
	a := Compare(Default(), OLAP, passed(500), passed(1))
	b := Compare(Default(), OLAP, passed(2), passed(1))
	if a.Explanation != b.Explanation {
		t.Error("explanation should not depend on the measured margin")
	}
}

func TestParseWorkload(t *testing.T) {
	if w, ok := ParseWorkload("olap"); !ok || w != OLAP {
		t.Errorf("ParseWorkload(olap) = %q, %v", w, ok)
	}
	if _, ok := ParseWorkload("batch"); ok {
		t.Error("ParseWorkload(batch) should fail")
	}
}
