/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the page and project containers. A Project serializes to the
// JSON document exchanged with the canvas, import/export and persistence.

import (
	"encoding/json"
	"time"
)

// FormatVersion is written to metadata.version on new projects.
const FormatVersion = "1.0.0"

// Page is one canvas sheet. Objects are in z-order: index 0 paints first (bottom).
type Page struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	BackgroundColor string   `json:"backgroundColor"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	Objects         []Object `json:"objects"`
}

// MarshalJSON always writes objects as an array.
func (p Page) MarshalJSON() ([]byte, error) {
	type plain Page
	w := plain(p)
	if w.Objects == nil {
		w.Objects = []Object{}
	}
	return json.Marshal(w)
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	c := p
	c.Objects = CloneObjects(p.Objects)
	return c
}

// Metadata carries timestamps and the format version marker.
type Metadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   string    `json:"version"`
}

// Project is the document root.
type Project struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Pages            []Page   `json:"pages"`
	SelectedPageID   string   `json:"selectedPageId"`
	SelectedObjectID *string  `json:"selectedObjectId"`
	Metadata         Metadata `json:"metadata"`
}

// NewPage returns an empty page.
func NewPage(id, name string, width, height int, background string) Page {
	return Page{ID: id, Name: name, BackgroundColor: background, Width: width, Height: height, Objects: []Object{}}
}

// NewProject returns a project holding first as its only, selected page.
func NewProject(id, name string, first Page, now time.Time) Project {
	return Project{
		ID:             id,
		Name:           name,
		Pages:          []Page{first},
		SelectedPageID: first.ID,
		Metadata:       Metadata{CreatedAt: now, UpdatedAt: now, Version: FormatVersion},
	}
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	c := p
	if p.Pages != nil {
		c.Pages = make([]Page, len(p.Pages))
		for i := range p.Pages {
			c.Pages[i] = p.Pages[i].Clone()
		}
	}
	if p.SelectedObjectID != nil {
		id := *p.SelectedObjectID
		c.SelectedObjectID = &id
	}
	return c
}

// SelectedObject returns the selected object id or "".
func (p Project) SelectedObject() string {
	if p.SelectedObjectID == nil {
		return ""
	}
	return *p.SelectedObjectID
}

// SetSelectedObject sets the selection; "" clears it.
func (p *Project) SetSelectedObject(id string) {
	if id == "" {
		p.SelectedObjectID = nil
		return
	}
	p.SelectedObjectID = &id
}

// PageIndex returns the index of the page with id, or -1.
func (p *Project) PageIndex(id string) int {
	for i := range p.Pages {
		if p.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// Page returns a pointer to the page with id, or nil.
func (p *Project) Page(id string) *Page {
	if i := p.PageIndex(id); i >= 0 {
		return &p.Pages[i]
	}
	return nil
}

// CurrentPage returns the selected page, or nil if the selection does not resolve.
func (p *Project) CurrentPage() *Page { return p.Page(p.SelectedPageID) }

// ObjectIDs returns every object id in the project, across pages and groups.
func (p *Project) ObjectIDs() map[string]bool {
	ids := map[string]bool{}
	for i := range p.Pages {
		collectIDs(p.Pages[i].Objects, ids)
	}
	return ids
}
