package analyzer

import "regexp"

var (
	stringLiteralRe = regexp.MustCompile(`'[^']*'`)
	columnRefRe     = regexp.MustCompile(`\b(\w+)\.(\w+)\b`)
	bareColumnRe    = regexp.MustCompile(`\(([a-zA-Z_]\w*)\s*(?:[<>=!]|::)`)
)

// ExtractConditionColumns lists the columns referenced by a plan condition
// such as "(o.order_date >= (now() - '30 days'::interval))".
func ExtractConditionColumns(cond string) []string {
	if cond == "" {
		return nil
	}
	cleaned := stringLiteralRe.ReplaceAllString(cond, "")
	seen := make(map[string]bool)
	var cols []string
	for _, m := range columnRefRe.FindAllStringSubmatch(cleaned, -1) {
		col := m[2]
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	for _, m := range bareColumnRe.FindAllStringSubmatch(cleaned, -1) {
		col := m[1]
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	return cols
}
