package xlsximport

import "strings"

// DefaultMaxScore applies to criterion columns not present in the
// reference table below.
const DefaultMaxScore = 5

// criterionMaxScores is the department's reference table of known rubric
// criteria, keyed by lowercased name. Spreadsheet headers are matched
// case-insensitively against it.
var criterionMaxScores = map[string]float64{
	"problem definition": 10,
	"literature review":  10,
	"methodology":        15,
	"implementation":     20,
	"results analysis":   15,
	"innovation":         10,
	"documentation":      10,
	"presentation":       10,
	"teamwork":           5,
	"timeline adherence": 5,
}

// MaxScoreFor resolves a criterion column header to its max score.
func MaxScoreFor(criterion string) float64 {
	if max, ok := criterionMaxScores[strings.ToLower(strings.TrimSpace(criterion))]; ok {
		return max
	}
	return DefaultMaxScore
}

// identifying columns carry no scores and never become criteria.
var identifyingColumns = map[string]bool{
	"projectname": true,
	"studentname": true,
	"sapid":       true,
}

func isIdentifyingColumn(header string) bool {
	return identifyingColumns[strings.ToLower(strings.TrimSpace(header))]
}
