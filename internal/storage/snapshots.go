/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Checkpoint is one saved version of a project.
type Checkpoint struct {
	ID    int64
	Label string
	TS    time.Time
	Blob  []byte
}

// tsLayout is fixed width so timestamps sort lexicographically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultKeepCheckpoints is how many checkpoints SaveCheckpoint retains per project.
const DefaultKeepCheckpoints = 20

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(project_id, label, ts, blob) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT id, label, ts, blob FROM snapshots WHERE project_id = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, label, ts, blob FROM snapshots WHERE project_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE project_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE project_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// SaveCheckpoint records a serialized project and prunes to DefaultKeepCheckpoints.
func (s *SQLite) SaveCheckpoint(ctx context.Context, projectID, label string, data []byte) error {
	if _, err := s.db.ExecContext(ctx, insertSnapshotSQL, projectID, label, time.Now().UTC().Format(tsLayout), data); err != nil {
		return err
	}
	_, err := s.PruneCheckpoints(ctx, projectID, DefaultKeepCheckpoints)
	return err
}

// LatestCheckpoint returns the newest checkpoint of a project, or nil if none.
func (s *SQLite) LatestCheckpoint(ctx context.Context, projectID string) (*Checkpoint, error) {
	c, err := scanCheckpoint(s.db.QueryRowContext(ctx, selectLatestSnapshotSQL, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCheckpoints returns up to limit most recent checkpoints, newest first.
func (s *SQLite) ListCheckpoints(ctx context.Context, projectID string, limit int) ([]Checkpoint, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listSnapshotsSQL, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Checkpoint
	for rows.Next() {
		c, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PruneCheckpoints keeps at most keepLast checkpoints for the project and deletes older ones.
func (s *SQLite) PruneCheckpoints(ctx context.Context, projectID string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, pruneOldSnapshotsSQL, projectID, projectID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(r rowScanner) (Checkpoint, error) {
	var c Checkpoint
	var tsStr string
	if err := r.Scan(&c.ID, &c.Label, &tsStr, &c.Blob); err != nil {
		return Checkpoint{}, err
	}
	// return the blob even if ts parse fails
	c.TS, _ = time.Parse(tsLayout, tsStr)
	return c, nil
}
