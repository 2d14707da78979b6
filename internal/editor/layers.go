/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"sort"

	"cardstudio/internal/domain"
)

// SetVisibility shows or hides an object on the current page.
func (e *Editor) SetVisibility(id string, visible bool) bool {
	return e.updateFlag("visibility", id, func(o *domain.Object) bool {
		if o.Hidden == !visible {
			return false
		}
		o.Hidden = !visible
		return true
	})
}

// SetLocked locks or unlocks an object on the current page.
func (e *Editor) SetLocked(id string, locked bool) bool {
	return e.updateFlag("lock", id, func(o *domain.Object) bool {
		if o.Locked == locked {
			return false
		}
		o.Locked = locked
		return true
	})
}

// RenameObject sets the layer name shown in the layer panel.
func (e *Editor) RenameObject(id, name string) bool {
	return e.updateFlag("rename-object", id, func(o *domain.Object) bool {
		if o.Name == name {
			return false
		}
		o.Name = name
		return true
	})
}

func (e *Editor) updateFlag(op, id string, apply func(o *domain.Object) bool) bool {
	return e.mutate(op, func(p *domain.Project) bool {
		objs := currentObjects(p)
		if objs == nil {
			return false
		}
		o := domain.FindObject(*objs, id)
		return o != nil && apply(o)
	})
}

// Group wraps sibling objects into a new group placed where the topmost member
// was. Members keep their relative paint order. All ids must share one parent
// list on the current page; otherwise nothing happens. It returns the group id.
func (e *Editor) Group(ids []string, name string) string {
	if len(ids) == 0 {
		return ""
	}
	if name == "" {
		name = "Group"
	}
	var gid string
	e.mutate("group", func(p *domain.Project) bool {
		objs := currentObjects(p)
		if objs == nil {
			return false
		}
		var parent *[]domain.Object
		indices := make([]int, 0, len(ids))
		seen := map[string]bool{}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			list, idx, ok := domain.Locate(objs, id)
			if !ok || (parent != nil && list != parent) {
				return false
			}
			parent = list
			indices = append(indices, idx)
		}
		sort.Ints(indices)

		members := make([]domain.Object, 0, len(indices))
		rest := make([]domain.Object, 0, len(*parent)-len(indices))
		pick := map[int]bool{}
		for _, i := range indices {
			pick[i] = true
			members = append(members, (*parent)[i])
		}
		for i, o := range *parent {
			if !pick[i] {
				rest = append(rest, o)
			}
		}
		at := indices[len(indices)-1] - (len(indices) - 1)

		g := domain.NewGroup(e.freshID(p.ObjectIDs()), name, members)
		out := make([]domain.Object, 0, len(rest)+1)
		out = append(out, rest[:at]...)
		out = append(out, g)
		out = append(out, rest[at:]...)
		*parent = out
		p.SetSelectedObject(g.ID)
		gid = g.ID
		return true
	})
	return gid
}

// Ungroup replaces a group by its children at the group's position.
func (e *Editor) Ungroup(groupID string) bool {
	return e.mutate("ungroup", func(p *domain.Project) bool {
		objs := currentObjects(p)
		if objs == nil {
			return false
		}
		list, idx, ok := domain.Locate(objs, groupID)
		if !ok || !(*list)[idx].IsGroup() {
			return false
		}
		children := (*list)[idx].Children
		out := make([]domain.Object, 0, len(*list)-1+len(children))
		out = append(out, (*list)[:idx]...)
		out = append(out, children...)
		out = append(out, (*list)[idx+1:]...)
		*list = out
		if p.SelectedObject() == groupID {
			p.SetSelectedObject("")
		}
		return true
	})
}

// ReorderLayer moves an entry within one layer list: the page's objects when
// parentID is "", otherwise the children of the group parentID. Indices are
// paint order positions.
func (e *Editor) ReorderLayer(parentID string, from, to int) bool {
	return e.mutate("reorder-layer", func(p *domain.Project) bool {
		objs := currentObjects(p)
		if objs == nil {
			return false
		}
		list := *objs
		if parentID != "" {
			g := domain.FindObject(*objs, parentID)
			if g == nil || !g.IsGroup() {
				return false
			}
			list = g.Children
		}
		return domain.MoveIndex(list, from, to)
	})
}
