// Package analyzer inspects a captured execution plan for the usual reasons
// an aggregation is slower on one layout than the other.
package analyzer

import (
	"slices"

	"github.com/jacobarthurs/schemabench/internal/plan"
)

// Analyze returns the findings for a plan, most severe first.
func Analyze(output plan.ExplainOutput) []Finding {
	var findings []Finding
	walkTree(&output.Plan, nil, -1, defaultRules, &findings)

	slices.SortStableFunc(findings, func(a, b Finding) int {
		return int(b.Severity) - int(a.Severity)
	})
	return findings
}

func walkTree(node *plan.Node, parent *plan.Node, childIdx int, rules []Rule, findings *[]Finding) {
	for _, rule := range rules {
		*findings = append(*findings, rule(node, parent, childIdx)...)
	}

	for i := range node.Plans {
		walkTree(&node.Plans[i], node, i, rules, findings)
	}
}
