package comparator

import "github.com/jacobarthurs/schemabench/internal/orders"

type rationaleKey struct {
	workload Workload
	winner   orders.Schema
}

// Static text for the dashboard. It describes the layouts, not the measurement.
var rationales = map[rationaleKey]string{
	{OLTP, orders.Normalized}: "Better for data integrity. Each write carries only " +
		"identifiers and the catalog price, foreign keys reject bad references, and no " +
		"customer or store attributes are copied.",
	{OLTP, orders.Denormalized}: "Better for OLTP write latency here. The order lands in " +
		"one insert with no price lookups, at the cost of copying customer, store and " +
		"employee data into every row and keeping only one line item.",
	{OLAP, orders.Normalized}: "The join between stores and orders was cheap at this data " +
		"size. Narrow order rows let the scan read fewer pages than the wide flat table.",
	{OLAP, orders.Denormalized}: "Better for OLAP workloads. Sales aggregate straight off " +
		"one pre-joined table, so the query skips the stores-to-orders join entirely.",
}

func Explanation(workload Workload, winner orders.Schema) string {
	return rationales[rationaleKey{workload, winner}]
}
