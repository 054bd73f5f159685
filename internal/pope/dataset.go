// internal/pope/dataset.go

// Package pope loads POPE benchmark files and partitions them into the
// edit pool used to derive a model edit and the holdout pool used for
// unbiased post-edit evaluation.
package pope

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrDuplicateID indicates a non-unique question_id in the benchmark file.
var ErrDuplicateID = errors.New("pope: duplicate question id")

// ErrUnknownDataset indicates a dataset family outside {coco, aokvqa, gqa}.
var ErrUnknownDataset = errors.New("pope: unknown dataset")

// ErrUnknownPopeType indicates a perturbation type outside
// {random, popular, adversarial}.
var ErrUnknownPopeType = errors.New("pope: unknown perturbation type")

// Record is one benchmark line: a yes/no object-presence question bound to
// an image. Immutable once loaded.
type Record struct {
	QuestionID int    `json:"question_id"`
	Image      string `json:"image"`
	Text       string `json:"text"`
	Label      string `json:"label"`
}

// IsYes reports whether the ground-truth answer is affirmative.
func (r Record) IsYes() bool { return r.Label == "yes" }

// CounterLabel returns the label opposite to ground truth, used as the
// supervision target when editing the model to suppress the wrong answer.
func (r Record) CounterLabel() string {
	if r.IsYes() {
		return "no"
	}
	return "yes"
}

// datasets maps each supported dataset family to its perturbation types.
var datasets = map[string][]string{
	"coco":   {"random", "popular", "adversarial"},
	"aokvqa": {"random", "popular", "adversarial"},
	"gqa":    {"random", "popular", "adversarial"},
}

// BenchmarkPath resolves the benchmark file for a dataset family and
// perturbation type under dir, e.g. pope_coco/coco_pope_adversarial.json.
func BenchmarkPath(dir, dataset, popeType string) (string, error) {
	types, ok := datasets[dataset]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: coco, aokvqa, gqa)", ErrUnknownDataset, dataset)
	}
	for _, t := range types {
		if t == popeType {
			return filepath.Join(dir, fmt.Sprintf("%s_pope_%s.json", dataset, popeType)), nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownPopeType, popeType, strings.Join(types, ", "))
}

// recordSchema validates each benchmark line before decoding. A malformed
// line is a data-integrity failure, not a skip.
const recordSchema = `{
	"type": "object",
	"required": ["question_id", "image", "text", "label"],
	"properties": {
		"question_id": {"type": "integer"},
		"image": {"type": "string", "minLength": 1},
		"text": {"type": "string", "minLength": 1},
		"label": {"type": "string", "enum": ["yes", "no"]}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(recordSchema)

func validateLine(line []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(line))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("record failed validation: %s", strings.Join(details, "; "))
}

// LoadDataset reads a newline-delimited POPE benchmark file into ordered
// Records, validating every line and rejecting duplicate ids.
func LoadDataset(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening benchmark file: %w", err)
	}
	defer file.Close()

	var records []Record
	seen := make(map[int]struct{})
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := validateLine(line); err != nil {
			return nil, fmt.Errorf("benchmark line %d: %w", lineNo, err)
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("benchmark line %d: %w", lineNo, err)
		}
		if _, dup := seen[rec.QuestionID]; dup {
			return nil, fmt.Errorf("%w: %d (line %d)", ErrDuplicateID, rec.QuestionID, lineNo)
		}
		seen[rec.QuestionID] = struct{}{}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading benchmark file: %w", err)
	}
	return records, nil
}
