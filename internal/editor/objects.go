/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"cardstudio/internal/catalog"
	"cardstudio/internal/domain"
)

// DuplicateOffset is added to left and top of duplicated and pasted objects.
const DuplicateOffset = 20

// Placement of objects created from the catalog helpers.
const (
	defaultLeft = 100
	defaultTop  = 100
)

// IconDescriptor identifies an icon from an icon set.
type IconDescriptor struct {
	Name   string
	Prefix string
	SVG    string
}

func currentObjects(p *domain.Project) *[]domain.Object {
	pg := p.CurrentPage()
	if pg == nil {
		return nil
	}
	return &pg.Objects
}

// UpdateObject merges fields into the object with id on the current page and
// commits. Unknown ids, invalid fields and merges that change nothing are no-ops.
func (e *Editor) UpdateObject(id string, fields domain.Fields) bool {
	return e.mutate("update-object", func(p *domain.Project) bool { return e.mergeInto(p, id, fields) })
}

// UpdateObjectSilent applies the same merge as UpdateObject without creating an
// undo stop or touching updatedAt. Subscribers are still notified.
func (e *Editor) UpdateObjectSilent(id string, fields domain.Fields) bool {
	return e.mutateSilent(func(p *domain.Project) bool { return e.mergeInto(p, id, fields) })
}

// UpdateObjectJSON decodes a JSON object of partial fields and applies it like
// UpdateObject. Only malformed JSON is reported as an error.
func (e *Editor) UpdateObjectJSON(id string, raw []byte) (bool, error) {
	var fields domain.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false, fmt.Errorf("decode fields for %q: %w", id, err)
	}
	return e.UpdateObject(id, fields), nil
}

func (e *Editor) mergeInto(p *domain.Project, id string, fields domain.Fields) bool {
	objs := currentObjects(p)
	if objs == nil {
		return false
	}
	o := domain.FindObject(*objs, id)
	if o == nil {
		return false
	}
	merged, err := o.Merge(fields)
	if err != nil {
		e.log.Warn("rejected object update", slog.String("id", id), slog.Any("err", err))
		return false
	}
	before, _ := json.Marshal(o)
	after, _ := json.Marshal(merged)
	if string(before) == string(after) {
		return false
	}
	*o = merged
	return true
}

// AddObject appends obj to the current page, making it topmost and selected.
// An empty or already used id is replaced by a fresh one. It returns the id
// used, or "" when obj has an unknown kind.
func (e *Editor) AddObject(obj domain.Object) string {
	if !obj.Kind.Valid() {
		return ""
	}
	var added string
	e.mutate("add-object", func(p *domain.Project) bool {
		objs := currentObjects(p)
		if objs == nil {
			return false
		}
		o := obj.Clone()
		taken := p.ObjectIDs()
		if o.ID == "" || taken[o.ID] {
			o.ID = e.freshID(taken)
		} else {
			taken[o.ID] = true
		}
		e.reassignChildIDs(o.Children, taken)
		*objs = append(*objs, o)
		p.SetSelectedObject(o.ID)
		added = o.ID
		return true
	})
	return added
}

// reassignChildIDs gives group children that collide with taken ids new ones.
func (e *Editor) reassignChildIDs(children []domain.Object, taken map[string]bool) {
	for i := range children {
		c := &children[i]
		if c.ID == "" || taken[c.ID] {
			c.ID = e.freshID(taken)
		} else {
			taken[c.ID] = true
		}
		e.reassignChildIDs(c.Children, taken)
	}
}

// DeleteObject removes the object with id from the current page and clears the selection.
func (e *Editor) DeleteObject(id string) bool {
	return e.mutate("delete-object", func(p *domain.Project) bool {
		objs := currentObjects(p)
		if objs == nil {
			return false
		}
		if _, ok := domain.RemoveObject(objs, id); !ok {
			return false
		}
		p.SetSelectedObject("")
		return true
	})
}

// DuplicateObject copies the object with id, offset by DuplicateOffset, next to
// the original's layer list and selects the copy. Group members are copied too.
func (e *Editor) DuplicateObject(id string) string {
	var clone string
	e.mutate("duplicate-object", func(p *domain.Project) bool {
		objs := currentObjects(p)
		if objs == nil {
			return false
		}
		list, idx, ok := domain.Locate(objs, id)
		if !ok {
			return false
		}
		c := (*list)[idx].Clone()
		taken := p.ObjectIDs()
		e.renew(&c, taken, DuplicateOffset)
		*list = append(*list, c)
		p.SetSelectedObject(c.ID)
		clone = c.ID
		return true
	})
	return clone
}

// renew assigns fresh ids to o and its descendants and shifts them by offset.
func (e *Editor) renew(o *domain.Object, taken map[string]bool, offset float64) {
	o.ID = e.freshID(taken)
	o.Left += offset
	o.Top += offset
	for i := range o.Children {
		e.renew(&o.Children[i], taken, offset)
	}
}

// MoveObjectUp swaps the object with its upper neighbour in its layer list.
func (e *Editor) MoveObjectUp(id string) bool {
	return e.reorder("move-up", id, func(n, i int) int { return i + 1 })
}

// MoveObjectDown swaps the object with its lower neighbour in its layer list.
func (e *Editor) MoveObjectDown(id string) bool {
	return e.reorder("move-down", id, func(n, i int) int { return i - 1 })
}

// BringToFront moves the object to the top of its layer list.
func (e *Editor) BringToFront(id string) bool {
	return e.reorder("bring-to-front", id, func(n, i int) int { return n - 1 })
}

// SendToBack moves the object to the bottom of its layer list.
func (e *Editor) SendToBack(id string) bool {
	return e.reorder("send-to-back", id, func(n, i int) int { return 0 })
}

func (e *Editor) reorder(op, id string, target func(n, i int) int) bool {
	return e.mutate(op, func(p *domain.Project) bool {
		objs := currentObjects(p)
		if objs == nil {
			return false
		}
		list, idx, ok := domain.Locate(objs, id)
		if !ok {
			return false
		}
		return domain.MoveIndex(*list, idx, target(len(*list), idx))
	})
}

// SelectObject selects the object with id on the current page; "" clears the selection.
func (e *Editor) SelectObject(id string) bool {
	return e.mutate("select-object", func(p *domain.Project) bool {
		if id == p.SelectedObject() {
			return false
		}
		if id != "" {
			objs := currentObjects(p)
			if objs == nil || domain.FindObject(*objs, id) == nil {
				return false
			}
		}
		p.SetSelectedObject(id)
		return true
	})
}

// AddShape places a catalog shape on the current page. Unknown shape types are ignored.
func (e *Editor) AddShape(shapeType string) string {
	style, ok := catalog.ShapeDefaults(shapeType)
	if !ok {
		e.log.Debug("unknown shape type", slog.String("shapeType", shapeType))
		return ""
	}
	o := domain.NewShape("", shapeType, defaultLeft, defaultTop)
	o.Width, o.Height = domain.Float(style.Width), domain.Float(style.Height)
	o.Fill, o.Stroke = style.Fill, style.Stroke
	if style.StrokeWidth > 0 {
		o.StrokeWidth = domain.Float(style.StrokeWidth)
	}
	if style.CornerRadius > 0 {
		o.Shape.CornerRadius = domain.Float(style.CornerRadius)
	}
	return e.AddObject(o)
}

// AddIcon places an icon with its catalog style on the current page.
func (e *Editor) AddIcon(icon IconDescriptor) string {
	style := catalog.IconDefaults(icon.Name)
	o := domain.NewIcon("", domain.IconPayload{SVG: icon.SVG, Name: icon.Name, Prefix: icon.Prefix}, defaultLeft, defaultTop)
	o.Fill = style.Fill
	o.Width, o.Height = domain.Float(style.Size), domain.Float(style.Size)
	return e.AddObject(o)
}

// AddText places a text box with the default font on the current page.
func (e *Editor) AddText(text string) string {
	o := domain.NewText("", text, defaultLeft, defaultTop)
	o.Fill = "#111827"
	o.Text.FontFamily = "Arial"
	o.Text.FontSize = domain.Float(32)
	o.Text.TextAlign = "left"
	return e.AddObject(o)
}

// AddImage places an image referenced by url on the current page.
func (e *Editor) AddImage(url string) string {
	o := domain.NewImage("", url, defaultLeft, defaultTop)
	o.Width, o.Height = domain.Float(300), domain.Float(200)
	return e.AddObject(o)
}
