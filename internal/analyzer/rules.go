package analyzer

import (
	"fmt"
	"strings"

	"github.com/jacobarthurs/schemabench/internal/plan"
)

const (
	MinRowsForSeqScanWarning  = 1000
	MinRowsForCriticalScan    = 100000
	MinRowsForCriticalSeqScan = 1000000

	FilterRemovalWarningPct = 50.0

	NestedLoopWarningLoops  = 1000
	NestedLoopCriticalLoops = 10000

	HashBatchesCritical = 8

	EstimateMismatchRatio   = 3.0
	MinRowsForEstimateCheck = 1000
)

// childIdx is the node's index within parent.Plans (-1 for root).
type Rule func(node *plan.Node, parent *plan.Node, childIdx int) []Finding

var defaultRules = []Rule{
	checkSeqScanInJoin,
	checkSeqScanFilter,
	checkNestedLoopHighLoops,
	checkSortSpill,
	checkHashSpill,
	checkTempBlocks,
	checkEstimateMismatch,
}

func rowsOf(node *plan.Node) int64 {
	if node.ActualRows > 0 {
		return node.ActualRows
	}
	return node.PlanRows
}

// checkSeqScanInJoin flags a large table scanned in full only to be joined
// against a much smaller input.
func checkSeqScanInJoin(node *plan.Node, parent *plan.Node, childIdx int) []Finding {
	if parent == nil || !isJoinNode(parent) || node.NodeType != "Seq Scan" {
		return nil
	}

	rows := rowsOf(node)
	if rows < MinRowsForSeqScanWarning {
		return nil
	}
	siblingRows := findSiblingRows(childIdx, parent)
	if siblingRows <= 0 || siblingRows >= rows/10 {
		return nil
	}

	severity := Warning
	if rows > MinRowsForCriticalSeqScan {
		severity = Critical
	}

	suggestion := "The join reads every row; the denormalized layout avoids this join entirely"
	if col := joinColumnFor(parent.HashCond, node); col != "" {
		suggestion = fmt.Sprintf("Consider index on %s(%s) to enable index lookup instead of full scan", node.RelationName, col)
	}

	return []Finding{{
		Severity:    severity,
		NodeType:    node.NodeType,
		Relation:    node.RelationName,
		Description: fmt.Sprintf("Seq Scan on %s scans %d rows to join against %d rows", node.RelationName, rows, siblingRows),
		Suggestion:  suggestion,
	}}
}

// checkSeqScanFilter flags a scan that discards most of what it reads, such
// as the date window filter on an unindexed order table.
func checkSeqScanFilter(node *plan.Node, parent *plan.Node, _ int) []Finding {
	if node.NodeType != "Seq Scan" || node.Filter == "" || node.RowsRemovedByFilter == 0 {
		return nil
	}
	if parent != nil && isJoinNode(parent) {
		return nil
	}

	total := node.ActualRows + node.RowsRemovedByFilter
	if total < MinRowsForSeqScanWarning {
		return nil
	}
	removedPct := float64(node.RowsRemovedByFilter) / float64(total) * 100
	if removedPct < FilterRemovalWarningPct {
		return nil
	}

	severity := Warning
	if total > MinRowsForCriticalScan {
		severity = Critical
	}

	suggestion := fmt.Sprintf("Add an index on %s covering the filter condition", node.RelationName)
	if cols := ExtractConditionColumns(node.Filter); len(cols) > 0 {
		suggestion = fmt.Sprintf("Consider index on %s(%s)", node.RelationName, strings.Join(cols, ", "))
	}

	return []Finding{{
		Severity:    severity,
		NodeType:    node.NodeType,
		Relation:    node.RelationName,
		Description: fmt.Sprintf("Seq Scan on %s filters out %.2f%% of rows (%d of %d)", node.RelationName, removedPct, node.RowsRemovedByFilter, total),
		Suggestion:  suggestion,
	}}
}

func checkNestedLoopHighLoops(node *plan.Node, _ *plan.Node, _ int) []Finding {
	if node.NodeType != "Nested Loop" || len(node.Plans) < 2 {
		return nil
	}

	inner := &node.Plans[1]
	if inner.ActualLoops < NestedLoopWarningLoops {
		return nil
	}

	severity := Warning
	if inner.ActualLoops > NestedLoopCriticalLoops {
		severity = Critical
	}

	innerTime := inner.ActualTotalTime * float64(inner.ActualLoops)
	return []Finding{{
		Severity:    severity,
		NodeType:    node.NodeType,
		Relation:    inner.RelationName,
		Description: fmt.Sprintf("Nested Loop executes %s %d times (%.1fms total)", innerNodeLabel(inner), inner.ActualLoops, innerTime),
		Suggestion:  "Consider Hash Join or Merge Join; verify indexes exist on inner side join columns",
	}}
}

func checkSortSpill(node *plan.Node, _ *plan.Node, _ int) []Finding {
	if node.SortSpaceType != "Disk" {
		return nil
	}
	return []Finding{{
		Severity:    Critical,
		NodeType:    node.NodeType,
		Relation:    node.RelationName,
		Description: fmt.Sprintf("Sort spilled to disk (%dkB) on %s", node.SortSpaceUsed, nodeLabel(node)),
		Suggestion:  fmt.Sprintf("Increase work_mem (currently needs >%dkB) or reduce data before sorting", node.SortSpaceUsed),
	}}
}

func checkHashSpill(node *plan.Node, _ *plan.Node, _ int) []Finding {
	if node.HashBatches <= 1 {
		return nil
	}
	severity := Warning
	if node.HashBatches > HashBatchesCritical {
		severity = Critical
	}
	return []Finding{{
		Severity:    severity,
		NodeType:    node.NodeType,
		Relation:    node.RelationName,
		Description: fmt.Sprintf("Hash used %d batches with %dkB memory on %s", node.HashBatches, node.PeakMemoryUsage, nodeLabel(node)),
		Suggestion:  "Increase work_mem to fit the hash table in memory",
	}}
}

func checkTempBlocks(node *plan.Node, _ *plan.Node, _ int) []Finding {
	total := node.TempReadBlocks + node.TempWrittenBlocks
	if total == 0 {
		return nil
	}
	sizeMB := float64(total*8) / 1024
	return []Finding{{
		Severity:    Warning,
		NodeType:    node.NodeType,
		Relation:    node.RelationName,
		Description: fmt.Sprintf("Temp I/O: %d blocks (%.1f MB) on %s", total, sizeMB, nodeLabel(node)),
		Suggestion:  "Increase work_mem or restructure query to reduce intermediate result size",
	}}
}

// checkEstimateMismatch flags stale statistics, which skew comparisons
// between freshly seeded tables.
func checkEstimateMismatch(node *plan.Node, _ *plan.Node, _ int) []Finding {
	if node.RelationName == "" || node.ActualLoops == 0 || node.PlanRows == 0 || node.ActualRows == 0 {
		return nil
	}
	if max(node.PlanRows, node.ActualRows) < MinRowsForEstimateCheck {
		return nil
	}

	ratio := float64(node.PlanRows) / float64(node.ActualRows)
	direction := "overestimated"
	if ratio < 1 {
		ratio = 1 / ratio
		direction = "underestimated"
	}
	if ratio < EstimateMismatchRatio {
		return nil
	}

	return []Finding{{
		Severity:    Info,
		NodeType:    node.NodeType,
		Relation:    node.RelationName,
		Description: fmt.Sprintf("Row count %s %.1fx on %s (estimated %d, actual %d)", direction, ratio, nodeLabel(node), node.PlanRows, node.ActualRows),
		Suggestion:  fmt.Sprintf("Run ANALYZE on %s", node.RelationName),
	}}
}

func isJoinNode(node *plan.Node) bool {
	switch node.NodeType {
	case "Hash Join", "Merge Join", "Nested Loop":
		return true
	}
	return false
}

func findSiblingRows(childIdx int, parent *plan.Node) int64 {
	for i := range parent.Plans {
		if i != childIdx {
			return rowsOf(&parent.Plans[i])
		}
	}
	return -1
}

func joinColumnFor(cond string, node *plan.Node) string {
	if cond == "" {
		return ""
	}
	condLower := strings.ToLower(cond)
	for _, prefix := range []string{node.Alias, node.RelationName} {
		if prefix == "" {
			continue
		}
		for _, col := range ExtractConditionColumns(cond) {
			if strings.Contains(condLower, strings.ToLower(prefix)+"."+strings.ToLower(col)) {
				return col
			}
		}
	}
	return ""
}

func nodeLabel(node *plan.Node) string {
	if node.RelationName != "" {
		if node.Alias != "" && node.Alias != node.RelationName {
			return fmt.Sprintf("%s on %s (%s)", node.NodeType, node.RelationName, node.Alias)
		}
		return fmt.Sprintf("%s on %s", node.NodeType, node.RelationName)
	}
	return node.NodeType
}

func innerNodeLabel(node *plan.Node) string {
	label := node.NodeType
	if node.RelationName != "" {
		label += " on " + node.RelationName
	}
	if node.IndexName != "" {
		label += " using " + node.IndexName
	}
	return label
}
