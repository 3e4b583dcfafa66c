package plan

import (
	"encoding/json"
	"fmt"
)

// ParseJSONPlan decodes the output of EXPLAIN (FORMAT JSON). Every element
// must carry a root node.
func ParseJSONPlan(data []byte) ([]ExplainOutput, error) {
	var plans []ExplainOutput
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("invalid EXPLAIN JSON: %w", err)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("empty EXPLAIN output")
	}
	for i, p := range plans {
		if p.Plan.NodeType == "" {
			return nil, fmt.Errorf("EXPLAIN output %d has no root plan node", i)
		}
	}
	return plans, nil
}
