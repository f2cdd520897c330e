// Package models holds the records, runs and sweep tables passed between
// the pipeline stages.
package models

// Strategy is the behavior an agent played during one step.
type Strategy int

const (
	Defect Strategy = iota
	Cooperate
)

// CooperateToken is the literal strategy value that marks a cooperator.
// Every other value, including lowercase "c", is a defector.
const CooperateToken = "C"

// ParseStrategy maps a raw strategy cell to a Strategy.
func ParseStrategy(s string) Strategy {
	if s == CooperateToken {
		return Cooperate
	}
	return Defect
}

func (s Strategy) String() string {
	if s == Cooperate {
		return "C"
	}
	return "D"
}

// StrategyRecord is one agent's state at one step.
type StrategyRecord struct {
	Step     int
	Strategy Strategy
	// ClusterCount is the precomputed cooperator cluster count for the step,
	// nil when the file has no such column or the cell is blank.
	ClusterCount *int
}

// Run is the full set of records parsed from a single result file.
type Run struct {
	Source  string
	Records []StrategyRecord
}
