// Package archive keeps per-curve summaries of every analyzed recording in a
// SQLite database so they outlive the in-memory registry.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"bakecurve-service/internal/bakecurve"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS curve_summaries (
		recording_id TEXT NOT NULL,
		curve_number INTEGER NOT NULL,
		start_index INTEGER NOT NULL,
		end_index INTEGER NOT NULL,
		peak_index INTEGER NOT NULL,
		peak_temperature REAL NOT NULL,
		end_reason TEXT NOT NULL,
		start_timestamp REAL NOT NULL,
		end_timestamp REAL NOT NULL,
		duration_minutes REAL NOT NULL,
		sample_count INTEGER NOT NULL,
		analyzed_at REAL NOT NULL,
		PRIMARY KEY (recording_id, curve_number)
	);
`

// Store is the SQLite curve archive.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at path and applies the schema.
// ":memory:" gives a private in-memory archive.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCurves replaces every archived curve of id with curves in one
// transaction. An empty curves slice clears the recording.
func (s *Store) SaveCurves(ctx context.Context, id bakecurve.RecordingID, analyzedAt time.Time, curves []bakecurve.CurveSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM curve_summaries WHERE recording_id = ?`, string(id)); err != nil {
		return fmt.Errorf("clear curves: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO curve_summaries (
			recording_id, curve_number, start_index, end_index, peak_index,
			peak_temperature, end_reason, start_timestamp, end_timestamp,
			duration_minutes, sample_count, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	at := unixFromTime(analyzedAt)
	for _, c := range curves {
		if _, err := stmt.ExecContext(ctx,
			string(id), c.CurveNumber, c.StartIndex, c.EndIndex, c.PeakIndex,
			c.PeakTemperature, string(c.EndReason), c.StartTimestamp, c.EndTimestamp,
			c.DurationMinutes, c.SampleCount, at,
		); err != nil {
			return fmt.Errorf("insert curve %d: %w", c.CurveNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListCurves returns the archived curves of id ordered by curve number.
func (s *Store) ListCurves(ctx context.Context, id bakecurve.RecordingID) ([]bakecurve.ArchivedCurve, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recording_id, curve_number, start_index, end_index, peak_index,
			peak_temperature, end_reason, start_timestamp, end_timestamp,
			duration_minutes, sample_count, analyzed_at
		FROM curve_summaries
		WHERE recording_id = ?
		ORDER BY curve_number ASC
	`, string(id))
	if err != nil {
		return nil, fmt.Errorf("query curves: %w", err)
	}
	defer rows.Close()

	var out []bakecurve.ArchivedCurve
	for rows.Next() {
		var (
			r          bakecurve.ArchivedCurve
			recID      string
			endReason  string
			analyzedAt float64
		)
		if err := rows.Scan(&recID, &r.CurveNumber, &r.StartIndex, &r.EndIndex, &r.PeakIndex,
			&r.PeakTemperature, &endReason, &r.StartTimestamp, &r.EndTimestamp,
			&r.DurationMinutes, &r.SampleCount, &analyzedAt); err != nil {
			return nil, fmt.Errorf("scan curve: %w", err)
		}
		r.RecordingID = bakecurve.RecordingID(recID)
		r.EndReason = bakecurve.EndReason(endReason)
		r.AnalyzedAt = timeFromUnix(analyzedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordingIDs returns every recording with archived curves, sorted.
func (s *Store) RecordingIDs(ctx context.Context) ([]bakecurve.RecordingID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT recording_id FROM curve_summaries ORDER BY recording_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	var ids []bakecurve.RecordingID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		ids = append(ids, bakecurve.RecordingID(id))
	}
	return ids, rows.Err()
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
