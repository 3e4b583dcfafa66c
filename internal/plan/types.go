package plan

// Node is the subset of a PostgreSQL EXPLAIN JSON node needed to tell a join
// plan from a single-table scan.
type Node struct {
	NodeType     string `json:"Node Type"`
	RelationName string `json:"Relation Name,omitempty"`
	Alias        string `json:"Alias,omitempty"`
	IndexName    string `json:"Index Name,omitempty"`
	JoinType     string `json:"Join Type,omitempty"`
	Strategy     string `json:"Strategy,omitempty"`

	TotalCost       float64 `json:"Total Cost"`
	PlanRows        int64   `json:"Plan Rows"`
	ActualTotalTime float64 `json:"Actual Total Time,omitempty"`
	ActualRows      int64   `json:"Actual Rows,omitempty"`
	ActualLoops     int64   `json:"Actual Loops,omitempty"`

	Filter              string `json:"Filter,omitempty"`
	RowsRemovedByFilter int64  `json:"Rows Removed by Filter,omitempty"`
	HashCond            string `json:"Hash Cond,omitempty"`

	SharedHitBlocks   int64 `json:"Shared Hit Blocks,omitempty"`
	SharedReadBlocks  int64 `json:"Shared Read Blocks,omitempty"`
	TempReadBlocks    int64 `json:"Temp Read Blocks,omitempty"`
	TempWrittenBlocks int64 `json:"Temp Written Blocks,omitempty"`

	SortSpaceType   string `json:"Sort Space Type,omitempty"`
	SortSpaceUsed   int64  `json:"Sort Space Used,omitempty"`
	HashBatches     int64  `json:"Hash Batches,omitempty"`
	PeakMemoryUsage int64  `json:"Peak Memory Usage,omitempty"`

	Plans []Node `json:"Plans,omitempty"`
}

// ExplainOutput is one element of the top-level EXPLAIN (FORMAT JSON) array.
type ExplainOutput struct {
	Plan          Node    `json:"Plan"`
	PlanningTime  float64 `json:"Planning Time,omitempty"`
	ExecutionTime float64 `json:"Execution Time,omitempty"`
}

// Summary condenses a plan into the figures the dashboard contrasts between
// the two layouts.
type Summary struct {
	RootNode      string   `json:"rootNode"`
	TotalCost     float64  `json:"totalCost"`
	PlanningTime  float64  `json:"planningTime"`
	ExecutionTime float64  `json:"executionTime"`
	Joins         int      `json:"joins"`
	SeqScans      int      `json:"seqScans"`
	IndexScans    int      `json:"indexScans"`
	SortSpills    int      `json:"sortSpills"`
	Relations     []string `json:"relations"`
	SharedHit     int64    `json:"sharedHitBlocks"`
	SharedRead    int64    `json:"sharedReadBlocks"`
}
