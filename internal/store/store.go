// Package store records postprocessing runs and radial-profile results
// in a sqlite database.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/windfield-data/planebox/internal/plane"
)

// Store wraps the results database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the results database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			task TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS radial_profiles (
			run_id TEXT,
			plane INTEGER,
			r DOUBLE,
			variable TEXT,
			mean DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run row and returns its generated ID.
func (s *Store) RecordRun(task string) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.Exec("INSERT INTO runs (run_id, task) VALUES (?, ?)", id, task); err != nil {
		return "", fmt.Errorf("store: record run: %w", err)
	}
	return id, nil
}

// RecordProfile inserts every (radius, variable, mean) row of a radial
// profile for one plane, in a single transaction.
func (s *Store) RecordProfile(runID string, iplane int, prof *plane.RadialProfile) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO radial_profiles (run_id, plane, r, variable, mean) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("store: prepare: %w", err)
	}
	defer stmt.Close()
	for _, v := range prof.Variables() {
		means := prof.Mean[v]
		for i, r := range prof.R {
			if _, err := stmt.Exec(runID, iplane, r, v, means[i]); err != nil {
				tx.Rollback()
				return fmt.Errorf("store: insert profile row: %w", err)
			}
		}
	}
	return tx.Commit()
}

// ProfileRow is one stored radial-profile sample.
type ProfileRow struct {
	Plane    int
	R        float64
	Variable string
	Mean     float64
}

// Profiles returns the stored rows for a run, ordered by plane, variable
// and radius.
func (s *Store) Profiles(runID string) ([]ProfileRow, error) {
	rows, err := s.db.Query(
		"SELECT plane, r, variable, mean FROM radial_profiles WHERE run_id = ? ORDER BY plane, variable, r", runID)
	if err != nil {
		return nil, fmt.Errorf("store: query profiles: %w", err)
	}
	defer rows.Close()
	var out []ProfileRow
	for rows.Next() {
		var p ProfileRow
		if err := rows.Scan(&p.Plane, &p.R, &p.Variable, &p.Mean); err != nil {
			return nil, fmt.Errorf("store: scan profile row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
