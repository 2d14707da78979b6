/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Objects form a tree: groups hold children, and every level keeps array order as
// paint order. These helpers address objects anywhere in that tree.

// FindObject returns a pointer to the object with id, searching groups recursively.
func FindObject(objs []Object, id string) *Object {
	for i := range objs {
		if objs[i].ID == id {
			return &objs[i]
		}
		if found := FindObject(objs[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Locate returns the slice that directly contains id and its index there.
func Locate(objs *[]Object, id string) (*[]Object, int, bool) {
	for i := range *objs {
		if (*objs)[i].ID == id {
			return objs, i, true
		}
		if list, idx, ok := Locate(&(*objs)[i].Children, id); ok {
			return list, idx, true
		}
	}
	return nil, -1, false
}

// RemoveObject deletes id from the tree and returns the removed object.
func RemoveObject(objs *[]Object, id string) (Object, bool) {
	list, idx, ok := Locate(objs, id)
	if !ok {
		return Object{}, false
	}
	removed := (*list)[idx]
	*list = append((*list)[:idx], (*list)[idx+1:]...)
	return removed, true
}

// MoveIndex moves the element at from to position to, shifting the others.
func MoveIndex(list []Object, from, to int) bool {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return false
	}
	item := list[from]
	if from < to {
		copy(list[from:to], list[from+1:to+1])
	} else {
		copy(list[to+1:from+1], list[to:from])
	}
	list[to] = item
	return true
}

// ObjectIDs returns every object id on the page, including group children.
func (p *Page) ObjectIDs() map[string]bool {
	ids := map[string]bool{}
	collectIDs(p.Objects, ids)
	return ids
}

func collectIDs(objs []Object, into map[string]bool) {
	for i := range objs {
		into[objs[i].ID] = true
		collectIDs(objs[i].Children, into)
	}
}

// Walk visits every object depth-first in paint order.
func Walk(objs []Object, fn func(o *Object, depth int)) {
	walk(objs, 0, fn)
}

func walk(objs []Object, depth int, fn func(o *Object, depth int)) {
	for i := range objs {
		fn(&objs[i], depth)
		walk(objs[i].Children, depth+1, fn)
	}
}
