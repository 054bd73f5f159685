// internal/classify/classify.go

// Package classify maps free-text model answers onto binary yes/no labels
// using the fixed lexical negation rule shared by published POPE runs.
// The rule is deliberately frozen: changing it would break score
// comparability with earlier evaluations of the same benchmark.
package classify

import "strings"

// Yes and No are the two output labels. 1 encodes an affirmative answer.
const (
	No  = 0
	Yes = 1
)

// negationWords are matched against whole tokens only. "Yoko" must not
// classify as negative, so substring matching is never used.
var negationWords = map[string]struct{}{
	"No":  {},
	"not": {},
	"no":  {},
	"NO":  {},
}

// Response classifies a single free-text answer. Periods and commas are
// stripped, the text is split on single spaces, and the answer is negative
// when any token is a negation word or carries the "n't" contraction suffix.
func Response(text string) int {
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", "")
	for _, word := range strings.Split(text, " ") {
		if _, ok := negationWords[word]; ok {
			return No
		}
		if strings.HasSuffix(word, "n't") {
			return No
		}
	}
	return Yes
}

// Batch classifies a slice of answers, preserving input order and producing
// exactly one label per answer.
func Batch(responses []string) []int {
	labels := make([]int, 0, len(responses))
	for _, r := range responses {
		labels = append(labels, Response(r))
	}
	return labels
}
