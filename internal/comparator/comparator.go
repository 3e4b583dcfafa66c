package comparator

import (
	"fmt"
	"math"

	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

// Comparator decides which layout was faster. Threshold only affects whether
// the margin is reported as significant; the winner is always decided by
// strict comparison.
type Comparator struct {
	Threshold float64
}

func Default() *Comparator {
	return &Comparator{Threshold: SignificanceThresholdPct}
}

func Compare[T any](c *Comparator, workload Workload, normalized, denormalized timing.Result[T]) Outcome {
	return c.CompareTimes(workload, normalized.ElapsedMs, normalized.Succeeded, denormalized.ElapsedMs, denormalized.Succeeded)
}

func (c *Comparator) CompareTimes(workload Workload, normalizedMs float64, normalizedOK bool, denormalizedMs float64, denormalizedOK bool) Outcome {
	out := Outcome{
		Workload:       workload,
		NormalizedMs:   normalizedMs,
		DenormalizedMs: denormalizedMs,
		DeltaMs:        roundTo(math.Abs(normalizedMs-denormalizedMs), 2),
	}

	if !normalizedOK || !denormalizedOK {
		out.Margin = failedMargin(normalizedOK, denormalizedOK)
		return out
	}

	out.Decided = true
	out.Winner = winner(normalizedMs, denormalizedMs)
	out.MarginPercent = PercentDiff(normalizedMs, denormalizedMs)
	out.Significant = out.MarginPercent >= c.Threshold
	out.Margin = margin(out)
	out.Explanation = Explanation(workload, out.Winner)
	return out
}

// PercentDiff is |a-b| / max(a,b) × 100, rounded to one decimal. It is 0 when
// both are 0.
func PercentDiff(a, b float64) float64 {
	hi := math.Max(a, b)
	if hi <= 0 {
		return 0
	}
	return roundTo(math.Abs(a-b)/hi*100, 1)
}

// winner breaks ties toward normalized so repeated equal timings never flap.
func winner(normalizedMs, denormalizedMs float64) orders.Schema {
	if denormalizedMs < normalizedMs {
		return orders.Denormalized
	}
	return orders.Normalized
}

func margin(o Outcome) string {
	if o.MarginPercent == 0 {
		return "both schemas took the same time"
	}
	if !o.Significant {
		return fmt.Sprintf("%s is marginally faster (%.1f%%)", o.Winner, o.MarginPercent)
	}
	return fmt.Sprintf("%s is %.1f%% faster", o.Winner, o.MarginPercent)
}

func failedMargin(normalizedOK, denormalizedOK bool) string {
	switch {
	case !normalizedOK && !denormalizedOK:
		return "both schemas failed"
	case !normalizedOK:
		return "normalized failed"
	default:
		return "denormalized failed"
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
