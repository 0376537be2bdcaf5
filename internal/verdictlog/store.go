// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package verdictlog keeps a SQLite history of analyzer verdicts and runs.
package verdictlog

import (
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"grimm.is/dnsadvisor/internal/clock"
	"grimm.is/dnsadvisor/internal/errors"
)

const topN = 10

// Store persists verdicts to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the verdict database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Attr(errors.Wrap(err, errors.KindIO, "open verdict db"), "path", path)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.Attr(errors.Wrap(err, errors.KindIO, "init verdict schema"), "path", path)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS verdicts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL, -- Unix seconds of the query
		client TEXT NOT NULL,
		domain TEXT NOT NULL,
		qtype TEXT,
		score REAL NOT NULL,
		decision TEXT NOT NULL,
		flags TEXT, -- comma separated
		label INTEGER -- NULL when unlabelled
	);
	CREATE INDEX IF NOT EXISTS idx_verdicts_timestamp ON verdicts(timestamp);
	CREATE INDEX IF NOT EXISTS idx_verdicts_domain ON verdicts(domain);
	CREATE INDEX IF NOT EXISTS idx_verdicts_run ON verdicts(run_id);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		model_type TEXT,
		total INTEGER,
		recommended INTEGER,
		learned INTEGER,
		candidates INTEGER
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordBatch inserts entries in one transaction.
func (s *Store) RecordBatch(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.KindIO, "begin verdict batch")
	}
	stmt, err := tx.Prepare(`
		INSERT INTO verdicts (run_id, timestamp, client, domain, qtype, score, decision, flags, label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, errors.KindIO, "prepare verdict insert")
	}
	defer stmt.Close()

	for _, e := range entries {
		var label any
		if e.Label != nil {
			label = boolToInt(*e.Label)
		}
		if _, err := stmt.Exec(
			e.RunID,
			e.Timestamp.Unix(),
			e.Client,
			e.Domain,
			e.QType,
			e.Score,
			e.Decision,
			strings.Join(e.Flags, ","),
			label,
		); err != nil {
			tx.Rollback()
			return errors.Attr(errors.Wrap(err, errors.KindIO, "insert verdict"), "domain", e.Domain)
		}
	}
	return errors.Wrap(tx.Commit(), errors.KindIO, "commit verdict batch")
}

// RecordRun stores or replaces a run summary.
func (s *Store) RecordRun(r Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, finished_at, model_type, total, recommended, learned, candidates)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			total = excluded.total,
			recommended = excluded.recommended,
			learned = excluded.learned,
			candidates = excluded.candidates
	`, r.ID, r.StartedAt.Unix(), r.FinishedAt.Unix(), r.ModelType, r.Total, r.Recommended, r.Learned, r.Candidates)
	return errors.Wrap(err, errors.KindIO, "record run")
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, model_type, total, recommended, learned, candidates
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &started, &finished, &r.ModelType, &r.Total, &r.Recommended, &r.Learned, &r.Candidates); err != nil {
			return nil, errors.Wrap(err, errors.KindIO, "scan run")
		}
		r.StartedAt = time.Unix(started, 0)
		r.FinishedAt = time.Unix(finished, 0)
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), errors.KindIO, "iterate runs")
}

// Recent returns verdicts newest first. search matches domain or client as
// a substring.
func (s *Store) Recent(limit, offset int, search string) ([]Entry, error) {
	query := `
		SELECT run_id, timestamp, client, domain, qtype, score, decision, flags, label
		FROM verdicts
	`
	var args []any
	if search != "" {
		query += " WHERE domain LIKE ? OR client LIKE ?"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "query verdicts")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e     Entry
			ts    int64
			qtype sql.NullString
			flags sql.NullString
			label sql.NullInt64
		)
		if err := rows.Scan(&e.RunID, &ts, &e.Client, &e.Domain, &qtype, &e.Score, &e.Decision, &flags, &label); err != nil {
			return nil, errors.Wrap(err, errors.KindIO, "scan verdict")
		}
		e.Timestamp = time.Unix(ts, 0)
		e.QType = qtype.String
		if flags.String != "" {
			e.Flags = strings.Split(flags.String, ",")
		}
		if label.Valid {
			positive := label.Int64 != 0
			e.Label = &positive
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), errors.KindIO, "iterate verdicts")
}

// Stats aggregates verdicts with query timestamps in [from, to].
func (s *Store) Stats(from, to time.Time) (*Stats, error) {
	stats := &Stats{}

	var recommended, learned sql.NullInt64
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			SUM(CASE WHEN decision = 'recommend' THEN 1 ELSE 0 END),
			SUM(CASE WHEN label IS NOT NULL THEN 1 ELSE 0 END)
		FROM verdicts
		WHERE timestamp >= ? AND timestamp <= ?
	`, from.Unix(), to.Unix()).Scan(&stats.Verdicts, &recommended, &learned)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "count verdicts")
	}
	stats.Recommended = recommended.Int64
	stats.Learned = learned.Int64

	rows, err := s.db.Query(`
		SELECT domain, COUNT(*) AS count, MAX(score)
		FROM verdicts
		WHERE timestamp >= ? AND timestamp <= ? AND decision = 'recommend'
		GROUP BY domain
		ORDER BY count DESC, domain
		LIMIT ?
	`, from.Unix(), to.Unix(), topN)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "query top domains")
	}
	for rows.Next() {
		var ds DomainStat
		if err := rows.Scan(&ds.Domain, &ds.Count, &ds.MaxScore); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, errors.KindIO, "scan top domain")
		}
		stats.TopRecommended = append(stats.TopRecommended, ds)
	}
	rows.Close()

	rows, err = s.db.Query(`
		SELECT client, COUNT(*) AS count
		FROM verdicts
		WHERE timestamp >= ? AND timestamp <= ? AND decision = 'recommend'
		GROUP BY client
		ORDER BY count DESC, client
		LIMIT ?
	`, from.Unix(), to.Unix(), topN)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "query top clients")
	}
	defer rows.Close()
	for rows.Next() {
		var cs ClientStat
		if err := rows.Scan(&cs.Client, &cs.Count); err != nil {
			return nil, errors.Wrap(err, errors.KindIO, "scan top client")
		}
		stats.TopClients = append(stats.TopClients, cs)
	}
	return stats, nil
}

// Cleanup removes verdicts older than retention and returns how many were
// deleted. Run summaries are kept.
func (s *Store) Cleanup(retention time.Duration) (int64, error) {
	cutoff := clock.Now().Add(-retention).Unix()
	result, err := s.db.Exec("DELETE FROM verdicts WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, errors.Wrap(err, errors.KindIO, "delete old verdicts")
	}
	return result.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
