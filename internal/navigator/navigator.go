/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package navigator is the page strip of the editor: page summaries with
// thumbnails, page commands and drag-to-reorder. Drag state is local to the
// navigator and never part of the project.
package navigator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cardstudio/internal/domain"
	"cardstudio/internal/editor"
	"cardstudio/internal/export"
	applog "cardstudio/internal/log"
)

// DefaultThumbWidth is the thumbnail width used when none is configured.
const DefaultThumbWidth = 160

// PageSummary describes one entry of the page strip.
type PageSummary struct {
	ID        string
	Name      string
	Index     int
	Width     int
	Height    int
	Objects   int
	Selected  bool
	Thumbnail string
}

type Navigator struct {
	ed     *editor.Editor
	r      export.Renderer
	thumbW int
	log    *slog.Logger

	mu       sync.Mutex
	dragFrom int
}

// New returns a navigator over ed. A nil renderer uses export.RasterRenderer.
func New(ed *editor.Editor, r export.Renderer, thumbW int) *Navigator {
	if r == nil {
		r = export.RasterRenderer{}
	}
	if thumbW <= 0 {
		thumbW = DefaultThumbWidth
	}
	return &Navigator{ed: ed, r: r, thumbW: thumbW, log: applog.WithComponent("navigator"), dragFrom: -1}
}

// Pages lists the pages in order with their stored thumbnails.
func (n *Navigator) Pages() []PageSummary {
	p := n.ed.Project()
	out := make([]PageSummary, 0, len(p.Pages))
	for i, pg := range p.Pages {
		count := 0
		domain.Walk(pg.Objects, func(*domain.Object, int) { count++ })
		out = append(out, PageSummary{
			ID:        pg.ID,
			Name:      pg.Name,
			Index:     i,
			Width:     pg.Width,
			Height:    pg.Height,
			Objects:   count,
			Selected:  pg.ID == p.SelectedPageID,
			Thumbnail: n.ed.PageThumbnail(pg.ID),
		})
	}
	return out
}

func (n *Navigator) Add() string { return n.ed.AddPage() }

func (n *Navigator) Delete(id string) bool { return n.ed.DeletePage(id) }

// Duplicate copies a page and gives the copy the source's thumbnail until it is refreshed.
func (n *Navigator) Duplicate(id string) string {
	cp := n.ed.DuplicatePage(id)
	if cp != "" {
		if thumb := n.ed.PageThumbnail(id); thumb != "" {
			n.ed.SetPageThumbnail(cp, thumb)
		}
	}
	return cp
}

func (n *Navigator) Select(id string) bool { return n.ed.SelectPage(id) }

func (n *Navigator) Rename(id, name string) bool { return n.ed.RenamePage(id, name) }

// BeginDrag remembers the page at index as the drag source.
func (n *Navigator) BeginDrag(index int) bool {
	if index < 0 || index >= len(n.ed.Project().Pages) {
		return false
	}
	n.mu.Lock()
	n.dragFrom = index
	n.mu.Unlock()
	return true
}

// Dragging returns the drag source index, if a drag is in progress.
func (n *Navigator) Dragging() (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dragFrom, n.dragFrom >= 0
}

func (n *Navigator) CancelDrag() {
	n.mu.Lock()
	n.dragFrom = -1
	n.mu.Unlock()
}

// DropAt moves the dragged page to index and ends the drag.
func (n *Navigator) DropAt(index int) bool {
	n.mu.Lock()
	from := n.dragFrom
	n.dragFrom = -1
	n.mu.Unlock()
	if from < 0 {
		return false
	}
	p := n.ed.Project()
	if from >= len(p.Pages) {
		return false
	}
	return n.ed.MovePage(p.Pages[from].ID, index)
}

// RefreshPage renders one page and stores its thumbnail on the editor.
func (n *Navigator) RefreshPage(id string) error {
	pg := n.ed.Page(id)
	if pg == nil {
		return fmt.Errorf("page %q not found", id)
	}
	data, err := n.r.Thumbnail(*pg, n.thumbW)
	if err != nil {
		return fmt.Errorf("render page %q: %w", id, err)
	}
	n.ed.SetPageThumbnail(id, export.DataURL(data))
	return nil
}

// RefreshThumbnails renders every page. Failures are logged and joined.
func (n *Navigator) RefreshThumbnails() error {
	var errs []error
	for _, pg := range n.ed.Project().Pages {
		if err := n.RefreshPage(pg.ID); err != nil {
			n.log.Warn("thumbnail failed", slog.String("page", pg.ID), slog.Any("err", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Watch re-renders the current page's thumbnail after every change until the
// returned function is called.
func (n *Navigator) Watch() (stop func()) {
	return n.ed.Subscribe(func(p domain.Project) {
		if err := n.RefreshPage(p.SelectedPageID); err != nil {
			n.log.Debug("thumbnail refresh skipped", slog.Any("err", err))
		}
	})
}
