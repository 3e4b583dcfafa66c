package analyzer

type Severity int

const (
	Info     Severity = 0
	Warning  Severity = 1
	Critical Severity = 2
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Finding struct {
	Severity    Severity `json:"severity"`
	NodeType    string   `json:"nodeType"`
	Relation    string   `json:"relation,omitempty"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion"`
}
