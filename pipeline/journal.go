// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import (
	"database/sql"
	"fmt"
	"time"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// Run status values in the journal.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// A Journal is a record of every tool run
// of the pipeline,
// kept in a sqlite database.
//
// The journal is a diagnosis aid:
// a nil journal is valid and records nothing,
// and journal errors never fail an analysis run.
type Journal struct {
	db *sql.DB
}

// A Run is a recorded tool invocation.
type Run struct {
	ID       string
	Stage    string
	Tool     string
	Args     string
	Status   string
	ExitCode int
	Start    time.Time
	Duration time.Duration
	Error    string
}

// OpenJournal opens a run journal database,
// creating it if needed.
func OpenJournal(name string) (*Journal, error) {
	db, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, fmt.Errorf("journal %q: %v", name, err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		stage       TEXT NOT NULL,
		tool        TEXT NOT NULL,
		args        TEXT NOT NULL,
		status      TEXT NOT NULL,
		exit_code   INTEGER NOT NULL DEFAULT 0,
		start       TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("journal %q: %v", name, err)
	}
	return &Journal{db: db}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}

// Begin records the start of a tool run.
func (j *Journal) Begin(runID string, st Stage, tool, args string) {
	if j == nil {
		return
	}
	j.db.Exec(`INSERT INTO runs (id, stage, tool, args, status, start)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, st.String(), tool, args, StatusRunning,
		time.Now().UTC().Format(time.RFC3339))
}

// End records the outcome of a tool run.
func (j *Journal) End(runID, status string, exitCode int, dur time.Duration, errMsg string) {
	if j == nil {
		return
	}
	j.db.Exec(`UPDATE runs
		SET status = ?, exit_code = ?, duration_ms = ?, error = ?
		WHERE id = ?`,
		status, exitCode, dur.Milliseconds(), errMsg, runID)
}

// List returns the last n recorded runs,
// most recent first.
// A non-positive n returns every run.
func (j *Journal) List(n int) ([]Run, error) {
	if j == nil {
		return nil, nil
	}

	q := `SELECT id, stage, tool, args, status, exit_code, start, duration_ms, error
		FROM runs ORDER BY start DESC`
	var rows *sql.Rows
	var err error
	if n > 0 {
		rows, err = j.db.Query(q+" LIMIT ?", n)
	} else {
		rows, err = j.db.Query(q)
	}
	if err != nil {
		return nil, fmt.Errorf("journal: %v", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var start string
		var durMS int64
		if err := rows.Scan(&r.ID, &r.Stage, &r.Tool, &r.Args, &r.Status, &r.ExitCode, &start, &durMS, &r.Error); err != nil {
			return nil, fmt.Errorf("journal: %v", err)
		}
		r.Start, _ = time.Parse(time.RFC3339, start)
		r.Duration = time.Duration(durMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: %v", err)
	}
	return runs, nil
}
