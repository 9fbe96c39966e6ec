// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package snapshot implements the keyed snapshot store and scan log
// described by the nodes/edges/scans schema: a relational backend for
// everything the classifier needs to remember between scans.
//
// The upstream ingestion engine this package is adapted from embeds CozoDB
// through cgo against a vendored static library. That binding has no
// fetchable, versioned module behind it, so this store is built on
// database/sql with the mattn/go-sqlite3 driver instead — a real,
// importable dependency that maps directly onto the three-table schema.
package snapshot

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kraklabs/gen-d/pkg/driftmodel"
)

// Store is a keyed store from callable identifier to snapshot, plus an
// append-only log of scan records, backed by a SQLite database file.
//
// The embedded database is the sole process-wide mutable state for a
// project: it permits multiple readers and a single writer at a time.
// Every top-level operation commits atomically, either in full or not at
// all, even across a process crash mid-write.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	closed bool
}

// Open creates (if necessary) and opens the SQLite database at path,
// ensuring the nodes/edges/scans schema exists. path may be ":memory:"
// for an ephemeral, process-local store (used by tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=off")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // one writer at a time; sqlite serializes anyway

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			node_id      TEXT PRIMARY KEY,
			file_path    TEXT NOT NULL,
			start_line   INTEGER NOT NULL,
			end_line     INTEGER NOT NULL,
			semantic_hash TEXT NOT NULL,
			doc_hash     TEXT NULL,
			last_scanned TIMESTAMP NOT NULL,
			scan_id      TEXT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			caller_id TEXT NOT NULL,
			callee_id TEXT NOT NULL,
			call_line INTEGER NULL,
			PRIMARY KEY (caller_id, callee_id)
		)`,
		`CREATE TABLE IF NOT EXISTS scans (
			scan_id       TEXT PRIMARY KEY,
			timestamp     TIMESTAMP NOT NULL,
			directory     TEXT NOT NULL,
			files_scanned INTEGER NOT NULL,
			nodes_found   INTEGER NOT NULL,
			errors        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_file_path ON nodes(file_path)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_scan_id ON nodes(scan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_caller_id ON edges(caller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_callee_id ON edges(callee_id)`,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// PutMany upserts records, all under one scan_id, as a single atomic
// transaction: either every record commits or none do. A record whose
// identifier already exists is fully replaced.
func (s *Store) PutMany(records []driftmodel.Snapshot, scanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (node_id, file_path, start_line, end_line, semantic_hash, doc_hash, last_scanned, scan_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(node_id) DO UPDATE SET
			file_path = excluded.file_path,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			semantic_hash = excluded.semantic_hash,
			doc_hash = excluded.doc_hash,
			last_scanned = excluded.last_scanned,
			scan_id = excluded.scan_id
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		var docHash any
		if r.DocFingerprint != "" {
			docHash = r.DocFingerprint
		}
		recordedAt := r.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now().UTC()
		}
		if _, err := stmt.Exec(r.CallableID, r.FilePath, r.StartLine, r.EndLine, r.SemanticFingerprint, docHash, recordedAt, scanID); err != nil {
			return fmt.Errorf("upsert node %s: %w", r.CallableID, err)
		}
	}

	return tx.Commit()
}

// PutEdges upserts resolved call-graph edges as one atomic transaction.
func (s *Store) PutEdges(edges []Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO edges (caller_id, callee_id, call_line)
		VALUES (?, ?, ?)
		ON CONFLICT(caller_id, callee_id) DO UPDATE SET call_line = excluded.call_line
	`)
	if err != nil {
		return fmt.Errorf("prepare edge upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range edges {
		if _, err := stmt.Exec(e.CallerID, e.CalleeID, e.CallLine); err != nil {
			return fmt.Errorf("upsert edge %s->%s: %w", e.CallerID, e.CalleeID, err)
		}
	}

	return tx.Commit()
}

// Edge is a resolved call-graph edge as persisted in the edges table.
type Edge struct {
	CallerID string
	CalleeID string
	CallLine int
}

// Get looks up one snapshot by identifier. A missing row is reported as
// (nil, nil) — the classifier treats absence as "no prior snapshot", never
// as an error.
func (s *Store) Get(id string) (*driftmodel.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT node_id, file_path, start_line, end_line, semantic_hash, doc_hash, last_scanned
		FROM nodes WHERE node_id = ?
	`, id)

	snap, err := scanSnapshotRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

// GetAll returns every stored snapshot, keyed by identifier. Concurrent
// with a PutMany, a reader sees either the old or the new complete state,
// never a mixture, because PutMany commits as one transaction.
func (s *Store) GetAll() (map[string]driftmodel.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT node_id, file_path, start_line, end_line, semantic_hash, doc_hash, last_scanned
		FROM nodes
	`)
	if err != nil {
		return nil, fmt.Errorf("query all snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]driftmodel.Snapshot)
	for rows.Next() {
		snap, err := scanSnapshotRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out[snap.CallableID] = *snap
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshotRow(row rowScanner) (*driftmodel.Snapshot, error) {
	var (
		id, filePath, semanticHash string
		docHash                    sql.NullString
		startLine, endLine         int
		lastScanned                time.Time
	)
	if err := row.Scan(&id, &filePath, &startLine, &endLine, &semanticHash, &docHash, &lastScanned); err != nil {
		return nil, err
	}
	return &driftmodel.Snapshot{
		CallableID:          id,
		FilePath:            filePath,
		StartLine:           startLine,
		EndLine:             endLine,
		SemanticFingerprint: semanticHash,
		DocFingerprint:      docHash.String,
		RecordedAt:          lastScanned,
	}, nil
}

// DeleteByFile removes every node (and its edges) associated with path,
// returning the count of nodes removed. Used for incremental re-scan of a
// single file.
func (s *Store) DeleteByFile(path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`SELECT node_id FROM nodes WHERE file_path = ?`, path)
	if err != nil {
		return 0, fmt.Errorf("select nodes for file: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM edges WHERE caller_id = ? OR callee_id = ?`, id, id); err != nil {
			return 0, fmt.Errorf("delete edges for node %s: %w", id, err)
		}
	}
	res, err := tx.Exec(`DELETE FROM nodes WHERE file_path = ?`, path)
	if err != nil {
		return 0, fmt.Errorf("delete nodes for file: %w", err)
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}
	return int(affected), nil
}

// RecordScan appends one entry to the scan log and returns its freshly
// minted, globally unique scan_id.
func (s *Store) RecordScan(root string, filesCount, callablesCount, errorCount int) (string, error) {
	scanID, err := newScanID()
	if err != nil {
		return "", fmt.Errorf("mint scan id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO scans (scan_id, timestamp, directory, files_scanned, nodes_found, errors)
		VALUES (?, ?, ?, ?, ?, ?)
	`, scanID, time.Now().UTC(), root, filesCount, callablesCount, errorCount)
	if err != nil {
		return "", fmt.Errorf("record scan: %w", err)
	}
	return scanID, nil
}

// ScanHistory returns up to limit most recent scan records, most-recent
// first. limit <= 0 means unlimited.
func (s *Store) ScanHistory(limit int) ([]driftmodel.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT scan_id, timestamp, directory, files_scanned, nodes_found, errors FROM scans ORDER BY timestamp DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []driftmodel.ScanRecord
	for rows.Next() {
		var r driftmodel.ScanRecord
		if err := rows.Scan(&r.ScanID, &r.Timestamp, &r.RootDirectory, &r.FilesCount, &r.CallablesCount, &r.ParseErrorCount); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Clear wipes every row from every table. Used to rebuild a project's
// index from scratch.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"edges", "nodes", "scans"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func newScanID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "scan_" + hex.EncodeToString(buf), nil
}
