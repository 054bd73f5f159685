// internal/store/sqlite.go

// Package store keeps an optional SQLite history of completed evaluation
// runs. History is best-effort: a failed insert never fails the run.
package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hujiayu1223/knowledge-editing/internal/metrics"
)

type DB struct {
	*sql.DB
}

// Open opens (or creates) the run-history database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		run_id TEXT,
		model TEXT,
		dataset TEXT,
		pope_type TEXT,
		seed INTEGER,
		tp INTEGER,
		fp INTEGER,
		tn INTEGER,
		fn INTEGER,
		accuracy REAL,
		precision REAL,
		recall REAL,
		f1 REAL,
		yes_ratio REAL,
		dur_ms REAL
	)`); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// RecordRun inserts one completed run.
func (db *DB) RecordRun(start time.Time, rec metrics.RunRecord) {
	_, _ = db.Exec(`INSERT INTO runs(
		ts, run_id, model, dataset, pope_type, seed, tp, fp, tn, fn, accuracy, precision, recall, f1, yes_ratio, dur_ms)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		float64(start.UnixNano())/1e9, rec.RunID, rec.Model, rec.Dataset, rec.PopeType, rec.Seed,
		rec.Report.TP, rec.Report.FP, rec.Report.TN, rec.Report.FN,
		rec.Report.Accuracy, rec.Report.Precision, rec.Report.Recall, rec.Report.F1, rec.Report.YesRatio,
		rec.DurMillis)
}
