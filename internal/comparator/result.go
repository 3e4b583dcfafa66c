package comparator

import "github.com/jacobarthurs/schemabench/internal/orders"

type Workload string

const (
	OLTP Workload = "oltp"
	OLAP Workload = "olap"
)

func ParseWorkload(s string) (Workload, bool) {
	switch Workload(s) {
	case OLTP, OLAP:
		return Workload(s), true
	default:
		return "", false
	}
}

const SignificanceThresholdPct = 1.0

// Outcome is the derived comparison of one normalized and one denormalized
// run of the same operation. It is never persisted.
type Outcome struct {
	Workload Workload `json:"workload"`
	// Decided is false when either side failed; Winner is then empty.
	Decided bool          `json:"decided"`
	Winner  orders.Schema `json:"winner,omitempty"`

	NormalizedMs   float64 `json:"normalizedMs"`
	DenormalizedMs float64 `json:"denormalizedMs"`
	DeltaMs        float64 `json:"deltaMs"`
	MarginPercent  float64 `json:"marginPercent"`
	Significant    bool    `json:"significant"`

	Margin      string `json:"margin"`
	Explanation string `json:"explanation,omitempty"`
}
