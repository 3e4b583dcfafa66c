package plan

import (
	"slices"
	"strings"
)

func Summarize(out ExplainOutput) Summary {
	s := Summary{
		RootNode:      out.Plan.NodeType,
		TotalCost:     out.Plan.TotalCost,
		PlanningTime:  out.PlanningTime,
		ExecutionTime: out.ExecutionTime,
		SharedHit:     out.Plan.SharedHitBlocks,
		SharedRead:    out.Plan.SharedReadBlocks,
	}
	walk(&out.Plan, &s)
	slices.Sort(s.Relations)
	s.Relations = slices.Compact(s.Relations)
	return s
}

func walk(node *Node, s *Summary) {
	switch {
	case isJoin(node.NodeType):
		s.Joins++
	case node.NodeType == "Seq Scan" || node.NodeType == "Parallel Seq Scan":
		s.SeqScans++
	case strings.Contains(node.NodeType, "Index"):
		s.IndexScans++
	}
	if node.SortSpaceType == "Disk" {
		s.SortSpills++
	}
	if node.RelationName != "" {
		s.Relations = append(s.Relations, node.RelationName)
	}

	for i := range node.Plans {
		walk(&node.Plans[i], s)
	}
}

func isJoin(nodeType string) bool {
	switch nodeType {
	case "Hash Join", "Merge Join", "Nested Loop":
		return true
	}
	return false
}
