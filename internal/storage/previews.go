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
	"fmt"
	"strings"
	"time"
)

const defaultPreviewsMaxBytes = 64 * 1024 * 1024

// PutPreview upserts the thumbnail of a page and enforces the cache size cap via
// LRU eviction.
func (s *SQLite) PutPreview(ctx context.Context, projectID, pageID, dataURL string) error {
	now := time.Now().UTC().Format(tsLayout)
	_, err := s.db.ExecContext(ctx, `INSERT INTO previews(project_id,page_id,data_url,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT(project_id,page_id) DO UPDATE SET data_url=excluded.data_url, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		projectID, pageID, dataURL, len(dataURL), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if s.PreviewsMaxBytes > 0 {
		return s.evictPreviewsToFit(ctx, s.PreviewsMaxBytes)
	}
	return nil
}

// GetPreview returns the stored thumbnail of a page, or "" when none exists, and
// updates its access time.
func (s *SQLite) GetPreview(ctx context.Context, projectID, pageID string) (string, error) {
	var dataURL string
	err := s.db.QueryRowContext(ctx, `SELECT data_url FROM previews WHERE project_id=? AND page_id=?`, projectID, pageID).Scan(&dataURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query preview: %w", err)
	}
	now := time.Now().UTC().Format(tsLayout)
	_, _ = s.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE project_id=? AND page_id=?`, now, projectID, pageID)
	return dataURL, nil
}

// TotalPreviewBytes returns total bytes tracked by previews.size.
func (s *SQLite) TotalPreviewBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// evictPreviewsToFit deletes least-recently-used rows until total size <= capBytes.
func (s *SQLite) evictPreviewsToFit(ctx context.Context, capBytes int64) error {
	total, err := s.TotalPreviewBytes(ctx)
	if err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	toDelete := make([]any, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		toDelete = append(toDelete, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before writing; the pool has a single connection.
	if err := rows.Close(); err != nil {
		return err
	}
	if len(toDelete) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(toDelete)), ",") + `)`
	if _, err := s.db.ExecContext(ctx, q, toDelete...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}
