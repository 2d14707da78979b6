/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layers is the layer panel: a tree of the current page listed top-most
// first, a multi-selection and an inline rename buffer. Only the commands it
// issues reach the project; panel state stays here.
package layers

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"cardstudio/internal/domain"
	"cardstudio/internal/editor"
)

// Node is one row of the layer panel.
type Node struct {
	ID       string
	Name     string
	Kind     domain.Kind
	Visible  bool
	Locked   bool
	Selected bool // the editor's selected object
	Depth    int
	Children []Node
}

// Tree builds panel nodes for objs. Entries are listed top-most first, the
// reverse of paint order.
func Tree(objs []domain.Object, selectedID string) []Node {
	return tree(objs, selectedID, 0)
}

func tree(objs []domain.Object, selectedID string, depth int) []Node {
	out := make([]Node, 0, len(objs))
	for i := len(objs) - 1; i >= 0; i-- {
		o := objs[i]
		n := Node{
			ID:       o.ID,
			Name:     Label(o),
			Kind:     o.Kind,
			Visible:  !o.Hidden,
			Locked:   o.Locked,
			Selected: o.ID == selectedID,
			Depth:    depth,
		}
		if o.IsGroup() {
			n.Children = tree(o.Children, selectedID, depth+1)
		}
		out = append(out, n)
	}
	return out
}

// Label returns the layer name, or a description derived from the object.
func Label(o domain.Object) string {
	if o.Name != "" {
		return o.Name
	}
	switch o.Kind {
	case domain.KindText:
		if o.Text != nil {
			s := strings.TrimSpace(strings.SplitN(o.Text.Text, "\n", 2)[0])
			if r := []rune(s); len(r) > 24 {
				s = string(r[:24]) + "…"
			}
			if s != "" {
				return s
			}
		}
		return "Text"
	case domain.KindShape:
		if o.Shape != nil && o.Shape.ShapeType != "" {
			r, n := utf8.DecodeRuneInString(o.Shape.ShapeType)
			return string(unicode.ToUpper(r)) + o.Shape.ShapeType[n:]
		}
		return "Shape"
	case domain.KindImage:
		return "Image"
	case domain.KindIcon:
		if o.Icon != nil && o.Icon.Name != "" {
			return "Icon " + o.Icon.Name
		}
		return "Icon"
	case domain.KindGroup:
		return "Group"
	}
	return string(o.Kind)
}

type Panel struct {
	ed *editor.Editor

	mu       sync.Mutex
	selected map[string]bool
	renaming string
	buffer   string
}

func NewPanel(ed *editor.Editor) *Panel {
	return &Panel{ed: ed, selected: map[string]bool{}}
}

// Nodes returns the tree for the current page.
func (pl *Panel) Nodes() []Node {
	pg := pl.ed.CurrentPage()
	if pg == nil {
		return nil
	}
	sel := ""
	if o := pl.ed.SelectedObject(); o != nil {
		sel = o.ID
	}
	return Tree(pg.Objects, sel)
}

// Toggle adds id to the multi-selection or removes it.
func (pl *Panel) Toggle(id string) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if pl.selected[id] {
		delete(pl.selected, id)
		return
	}
	pl.selected[id] = true
}

// SelectOnly replaces the multi-selection with id and selects it in the editor.
func (pl *Panel) SelectOnly(id string) {
	pl.mu.Lock()
	pl.selected = map[string]bool{id: true}
	pl.mu.Unlock()
	pl.ed.SelectObject(id)
}

func (pl *Panel) ClearSelection() {
	pl.mu.Lock()
	pl.selected = map[string]bool{}
	pl.mu.Unlock()
}

// Selection returns the selected ids still on the current page, in paint order.
func (pl *Panel) Selection() []string {
	pg := pl.ed.CurrentPage()
	if pg == nil {
		return nil
	}
	pl.mu.Lock()
	defer pl.mu.Unlock()
	var out []string
	domain.Walk(pg.Objects, func(o *domain.Object, _ int) {
		if pl.selected[o.ID] {
			out = append(out, o.ID)
		}
	})
	return out
}

// GroupSelection groups the multi-selection and makes the group the only selected entry.
func (pl *Panel) GroupSelection(name string) string {
	ids := pl.Selection()
	if len(ids) < 2 {
		return ""
	}
	gid := pl.ed.Group(ids, name)
	if gid != "" {
		pl.mu.Lock()
		pl.selected = map[string]bool{gid: true}
		pl.mu.Unlock()
	}
	return gid
}

// Ungroup dissolves the group and selects its former members in the panel.
func (pl *Panel) Ungroup(id string) bool {
	g := pl.ed.Object(id)
	if g == nil || !g.IsGroup() {
		return false
	}
	if !pl.ed.Ungroup(id) {
		return false
	}
	pl.mu.Lock()
	pl.selected = map[string]bool{}
	for _, c := range g.Children {
		pl.selected[c.ID] = true
	}
	pl.mu.Unlock()
	return true
}

// Move reorders an entry inside one list of the panel. parentID is "" for the
// page level or a group id; indices are panel rows, top-most first.
func (pl *Panel) Move(parentID string, fromRow, toRow int) bool {
	n, err := pl.listLen(parentID)
	if err != nil {
		return false
	}
	if fromRow < 0 || toRow < 0 || fromRow >= n || toRow >= n {
		return false
	}
	return pl.ed.ReorderLayer(parentID, n-1-fromRow, n-1-toRow)
}

func (pl *Panel) listLen(parentID string) (int, error) {
	if parentID == "" {
		pg := pl.ed.CurrentPage()
		if pg == nil {
			return 0, fmt.Errorf("no current page")
		}
		return len(pg.Objects), nil
	}
	g := pl.ed.Object(parentID)
	if g == nil || !g.IsGroup() {
		return 0, fmt.Errorf("%q is not a group", parentID)
	}
	return len(g.Children), nil
}

func (pl *Panel) ToggleVisible(id string) bool {
	o := pl.ed.Object(id)
	return o != nil && pl.ed.SetVisibility(id, o.Hidden)
}

func (pl *Panel) ToggleLocked(id string) bool {
	o := pl.ed.Object(id)
	return o != nil && pl.ed.SetLocked(id, !o.Locked)
}

// BeginRename opens the rename buffer with the current label.
func (pl *Panel) BeginRename(id string) bool {
	o := pl.ed.Object(id)
	if o == nil {
		return false
	}
	pl.mu.Lock()
	pl.renaming, pl.buffer = id, Label(*o)
	pl.mu.Unlock()
	return true
}

// Renaming returns the entry being renamed and the buffer contents.
func (pl *Panel) Renaming() (id, buffer string) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.renaming, pl.buffer
}

func (pl *Panel) SetRenameBuffer(s string) {
	pl.mu.Lock()
	pl.buffer = s
	pl.mu.Unlock()
}

func (pl *Panel) CancelRename() {
	pl.mu.Lock()
	pl.renaming, pl.buffer = "", ""
	pl.mu.Unlock()
}

// CommitRename applies a non-blank buffer as the layer name and closes the buffer.
func (pl *Panel) CommitRename() bool {
	pl.mu.Lock()
	id, name := pl.renaming, strings.TrimSpace(pl.buffer)
	pl.renaming, pl.buffer = "", ""
	pl.mu.Unlock()
	if id == "" || name == "" {
		return false
	}
	return pl.ed.RenameObject(id, name)
}
