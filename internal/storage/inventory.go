package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Artifact is one inventory row: a cached file keyed by its index path.
type Artifact struct {
	IndexPath string
	Source    string
	SizeBytes int64
	CreatedAt time.Time
}

// InventoryStats summarizes the cache inventory.
type InventoryStats struct {
	ArtifactCount int64
	TotalBytes    int64
}

// RecordArtifact upserts an inventory row for a materialized artifact.
// source identifies how the artifact was retrieved (compressed, direct,
// pointer).
func (db *DB) RecordArtifact(indexPath, source string, sizeBytes int64) error {
	_, err := db.conn.Exec(`
		INSERT INTO artifacts (index_path, source, size_bytes, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(index_path) DO UPDATE SET
			source = excluded.source,
			size_bytes = excluded.size_bytes,
			created_at = excluded.created_at
	`, indexPath, source, sizeBytes, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}
	return nil
}

// List returns up to limit inventory rows, newest first. limit <= 0 means no limit.
func (db *DB) List(limit int) ([]Artifact, error) {
	query := "SELECT index_path, source, size_bytes, created_at FROM artifacts ORDER BY created_at DESC"
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.conn.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = db.conn.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		var created string
		if err := rows.Scan(&a.IndexPath, &a.Source, &a.SizeBytes, &created); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Stats returns artifact count and total recorded bytes.
func (db *DB) Stats() (InventoryStats, error) {
	var s InventoryStats
	err := db.conn.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM artifacts",
	).Scan(&s.ArtifactCount, &s.TotalBytes)
	if err != nil {
		return InventoryStats{}, fmt.Errorf("failed to compute inventory stats: %w", err)
	}
	return s, nil
}

// Clear removes all inventory rows. The cached files themselves are untouched.
func (db *DB) Clear() error {
	if _, err := db.conn.Exec("DELETE FROM artifacts"); err != nil {
		return fmt.Errorf("failed to clear inventory: %w", err)
	}
	return nil
}
