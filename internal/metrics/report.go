// internal/metrics/report.go
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hujiayu1223/knowledge-editing/internal/vlm"
)

// RunRecord is the JSON object appended to the run log. One record per
// completed evaluation; the file accumulates history across runs. The
// decoding settings are echoed so runs sharing a type+seed log file stay
// distinguishable.
type RunRecord struct {
	Timestamp string             `json:"timestamp"`
	RunID     string             `json:"runId"`
	Model     string             `json:"model"`
	Dataset   string             `json:"dataset"`
	PopeType  string             `json:"popeType"`
	Seed      int64              `json:"seed"`
	Decoding  vlm.DecodingConfig `json:"decoding"`
	Report    Report             `json:"report"`
	DurMillis float64            `json:"durMs"`
}

// ReportPath returns the run-log path for a perturbation type and seed
// under dir, e.g. log/adversarial_seed0.jsonl.
func ReportPath(dir, popeType string, seed int64) string {
	return filepath.Join(dir, fmt.Sprintf("%s_seed%d.jsonl", popeType, seed))
}

// AppendRecord appends one record to the run log, creating the directory
// and file as needed. The file handle is held only for the single write.
func AppendRecord(dir, popeType string, seed int64, rec RunRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating log directory: %w", err)
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	path := ReportPath(dir, popeType, seed)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("error opening run log: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(rec); err != nil {
		return fmt.Errorf("error writing run log: %w", err)
	}
	return nil
}
