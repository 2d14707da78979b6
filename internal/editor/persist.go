/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cardstudio/internal/domain"
	applog "cardstudio/internal/log"
	"cardstudio/internal/schema"
	"cardstudio/internal/storage"
	"cardstudio/internal/undo"
)

// Store is the host key-value facility used by Save and Load.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Checkpointer is implemented by stores that keep a history of saved versions.
type Checkpointer interface {
	SaveCheckpoint(ctx context.Context, projectID, label string, data []byte) error
}

// PreviewStore is implemented by stores that persist page thumbnails.
type PreviewStore interface {
	PutPreview(ctx context.Context, projectID, pageID, dataURL string) error
}

// Export returns the current project as indented JSON.
func (e *Editor) Export() ([]byte, error) {
	p := e.Project()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export project %s: %w", p.ID, err)
	}
	return data, nil
}

// Import replaces the whole project with data. Input that fails the schema, does
// not decode or breaks a project invariant is rejected with an error matching
// schema.ErrFormat and leaves the editor untouched. On success history restarts
// at the imported state; the clipboard is kept.
func (e *Editor) Import(data []byte) error {
	if err := schema.Validate(data); err != nil {
		return err
	}
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return schema.Wrap(err)
	}
	if err := p.Validate(); err != nil {
		return schema.Wrap(err)
	}
	canon, blob, err := encode(p)
	if err != nil {
		return fmt.Errorf("encode imported project: %w", err)
	}
	e.mu.Lock()
	e.project = canon
	e.thumbs = map[string]string{}
	e.hist.Reset(undo.Snapshot{Blob: blob, TS: e.clock(), Label: "import"})
	e.mu.Unlock()
	e.log.Info("project imported", slog.String("project", p.ID), slog.Int("pages", len(p.Pages)))
	e.notify()
	return nil
}

// Save writes the project to store under storage.ProjectKey. Stores that keep
// checkpoints or previews receive those too. Failures are logged and returned.
func (e *Editor) Save(ctx context.Context, store Store) error {
	p := e.Project()
	ctx = applog.ContextWithProject(ctx, p.ID)
	l := applog.WithOperation(e.log, "save")
	data, err := e.Export()
	if err != nil {
		l.ErrorContext(ctx, "export failed", slog.Any("err", err))
		return err
	}
	if err := store.Put(ctx, storage.ProjectKey(p.ID), data); err != nil {
		l.ErrorContext(ctx, "save failed", slog.Any("err", err))
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	if cp, ok := store.(Checkpointer); ok {
		if err := cp.SaveCheckpoint(ctx, p.ID, "save", data); err != nil {
			l.WarnContext(ctx, "checkpoint failed", slog.Any("err", err))
		}
	}
	if ps, ok := store.(PreviewStore); ok {
		for _, pg := range p.Pages {
			if thumb := e.PageThumbnail(pg.ID); thumb != "" {
				if err := ps.PutPreview(ctx, p.ID, pg.ID, thumb); err != nil {
					l.WarnContext(ctx, "preview save failed", slog.String("page", pg.ID), slog.Any("err", err))
				}
			}
		}
	}
	l.InfoContext(ctx, "project saved", slog.Int("bytes", len(data)))
	return nil
}

// Load reads the project with projectID from store and imports it. On any
// failure the current state is kept and the error is returned.
func (e *Editor) Load(ctx context.Context, store Store, projectID string) error {
	ctx = applog.ContextWithProject(ctx, projectID)
	l := applog.WithOperation(e.log, "load")
	data, err := store.Get(ctx, storage.ProjectKey(projectID))
	if err != nil {
		l.ErrorContext(ctx, "load failed", slog.Any("err", err))
		return fmt.Errorf("load project %s: %w", projectID, err)
	}
	if err := e.Import(data); err != nil {
		l.ErrorContext(ctx, "stored project rejected", slog.Any("err", err))
		return fmt.Errorf("load project %s: %w", projectID, err)
	}
	return nil
}
