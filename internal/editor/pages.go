/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"strconv"

	"cardstudio/internal/domain"
)

// AddPage appends a page with the configured defaults and selects it.
func (e *Editor) AddPage() string {
	var added string
	e.mutate("add-page", func(p *domain.Project) bool {
		taken := pageIDs(p)
		pg := domain.NewPage(e.freshID(taken), fmt.Sprintf("Page %d", len(p.Pages)+1), e.pages.Width, e.pages.Height, e.pages.Background)
		p.Pages = append(p.Pages, pg)
		p.SelectedPageID = pg.ID
		p.SetSelectedObject("")
		added = pg.ID
		return true
	})
	return added
}

// DeletePage removes the page with id. The last remaining page is never removed.
// Deleting the selected page selects the first remaining one.
func (e *Editor) DeletePage(id string) bool {
	ok := e.mutate("delete-page", func(p *domain.Project) bool {
		idx := p.PageIndex(id)
		if idx < 0 || len(p.Pages) <= 1 {
			return false
		}
		p.Pages = append(p.Pages[:idx], p.Pages[idx+1:]...)
		if p.SelectedPageID == id {
			p.SelectedPageID = p.Pages[0].ID
			p.SetSelectedObject("")
		}
		return true
	})
	if ok {
		e.mu.Lock()
		delete(e.thumbs, id)
		e.mu.Unlock()
	}
	return ok
}

// DuplicatePage deep copies the page with id, inserts the copy right after it
// and selects it. Copied objects get ids derived from the originals.
func (e *Editor) DuplicatePage(id string) string {
	var added string
	e.mutate("duplicate-page", func(p *domain.Project) bool {
		idx := p.PageIndex(id)
		if idx < 0 {
			return false
		}
		cp := p.Pages[idx].Clone()
		cp.ID = e.freshID(pageIDs(p))
		cp.Name = p.Pages[idx].Name + " (copy)"
		stamp := strconv.FormatInt(e.clock().UnixMilli(), 10)
		taken := p.ObjectIDs()
		renameCopies(cp.Objects, stamp, taken)

		p.Pages = append(p.Pages, domain.Page{})
		copy(p.Pages[idx+2:], p.Pages[idx+1:])
		p.Pages[idx+1] = cp
		p.SelectedPageID = cp.ID
		p.SetSelectedObject("")
		added = cp.ID
		return true
	})
	return added
}

func renameCopies(objs []domain.Object, stamp string, taken map[string]bool) {
	for i := range objs {
		objs[i].ID = derivedID(objs[i].ID+"-copy-"+stamp, taken)
		renameCopies(objs[i].Children, stamp, taken)
	}
}

// SelectPage makes the page with id current and clears the object selection.
func (e *Editor) SelectPage(id string) bool {
	return e.mutate("select-page", func(p *domain.Project) bool {
		if id == p.SelectedPageID || p.PageIndex(id) < 0 {
			return false
		}
		p.SelectedPageID = id
		p.SetSelectedObject("")
		return true
	})
}

func (e *Editor) RenamePage(id, name string) bool {
	return e.mutate("rename-page", func(p *domain.Project) bool {
		pg := p.Page(id)
		if pg == nil || pg.Name == name {
			return false
		}
		pg.Name = name
		return true
	})
}

// ResizePage changes the canvas size; non-positive sizes are ignored.
func (e *Editor) ResizePage(id string, width, height int) bool {
	return e.mutate("resize-page", func(p *domain.Project) bool {
		pg := p.Page(id)
		if pg == nil || width <= 0 || height <= 0 || (pg.Width == width && pg.Height == height) {
			return false
		}
		pg.Width, pg.Height = width, height
		return true
	})
}

// MovePage moves the page with id to position to.
func (e *Editor) MovePage(id string, to int) bool {
	return e.mutate("move-page", func(p *domain.Project) bool {
		from := p.PageIndex(id)
		if from < 0 || to < 0 || to >= len(p.Pages) || from == to {
			return false
		}
		pg := p.Pages[from]
		p.Pages = append(p.Pages[:from], p.Pages[from+1:]...)
		p.Pages = append(p.Pages[:to], append([]domain.Page{pg}, p.Pages[to:]...)...)
		return true
	})
}

// UpdateBackgroundColor sets the background of the current page.
func (e *Editor) UpdateBackgroundColor(color string) bool {
	return e.mutate("background", func(p *domain.Project) bool {
		pg := p.CurrentPage()
		if pg == nil || pg.BackgroundColor == color {
			return false
		}
		pg.BackgroundColor = color
		return true
	})
}

// SetPageThumbnail stores a rendered preview for a page. Thumbnails are not part
// of the document: no undo stop, no notification.
func (e *Editor) SetPageThumbnail(pageID, dataURL string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project.Page(pageID) == nil {
		return false
	}
	e.thumbs[pageID] = dataURL
	return true
}

// PageThumbnail returns the last stored preview for a page, or "".
func (e *Editor) PageThumbnail(pageID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thumbs[pageID]
}

func pageIDs(p *domain.Project) map[string]bool {
	ids := make(map[string]bool, len(p.Pages))
	for _, pg := range p.Pages {
		ids[pg.ID] = true
	}
	return ids
}
