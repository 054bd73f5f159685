// internal/metrics/metrics.go

// Package metrics computes confusion-matrix statistics over binary
// predictions and persists one report per evaluation run as a JSON line.
package metrics

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch indicates the prediction and label sequences cannot be
// compared position-wise.
var ErrLengthMismatch = errors.New("metrics: prediction and label counts differ")

// ErrNoPredictions indicates an empty prediction sequence was scored.
var ErrNoPredictions = errors.New("metrics: no predictions to score")

// DegenerateMetricError reports a zero denominator in a derived metric.
// The harness surfaces it instead of emitting NaN or infinity.
type DegenerateMetricError struct {
	Denominator string
}

func (e *DegenerateMetricError) Error() string {
	return fmt.Sprintf("metrics: degenerate metric, denominator %s is zero", e.Denominator)
}

// Confusion holds the four confusion-matrix counts for a run.
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// Report carries the confusion counts and the derived statistics.
// All ratios are in [0,1].
type Report struct {
	Confusion
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	YesRatio  float64 `json:"yesRatio"`
}

// Compute scores predictions against ground-truth labels. Both slices hold
// values in {0,1}, label 1 meaning "yes". Any zero denominator fails with a
// DegenerateMetricError naming the denominator.
func Compute(preds, labels []int) (Report, error) {
	if len(preds) != len(labels) {
		return Report{}, fmt.Errorf("%w: %d predictions vs %d labels", ErrLengthMismatch, len(preds), len(labels))
	}
	if len(preds) == 0 {
		return Report{}, ErrNoPredictions
	}

	var c Confusion
	yes := 0
	for i, pred := range preds {
		if pred == 1 {
			yes++
		}
		switch {
		case pred == 1 && labels[i] == 1:
			c.TP++
		case pred == 1 && labels[i] == 0:
			c.FP++
		case pred == 0 && labels[i] == 0:
			c.TN++
		default:
			c.FN++
		}
	}

	if c.TP+c.FP == 0 {
		return Report{}, &DegenerateMetricError{Denominator: "TP+FP"}
	}
	if c.TP+c.FN == 0 {
		return Report{}, &DegenerateMetricError{Denominator: "TP+FN"}
	}
	precision := float64(c.TP) / float64(c.TP+c.FP)
	recall := float64(c.TP) / float64(c.TP+c.FN)
	if precision+recall == 0 {
		return Report{}, &DegenerateMetricError{Denominator: "precision+recall"}
	}

	total := float64(len(preds))
	return Report{
		Confusion: c,
		Accuracy:  float64(c.TP+c.TN) / total,
		Precision: precision,
		Recall:    recall,
		F1:        2 * precision * recall / (precision + recall),
		YesRatio:  float64(yes) / total,
	}, nil
}
