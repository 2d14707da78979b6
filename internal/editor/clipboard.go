/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "cardstudio/internal/domain"

// SetClipboard replaces the clipboard contents; nil empties it. The clipboard is
// not part of the document and survives undo and page switches.
func (e *Editor) SetClipboard(objs []domain.Object) { e.board.Set(objs) }

// Clipboard returns a copy of the clipboard contents, or nil.
func (e *Editor) Clipboard() []domain.Object { return e.board.Get() }

func (e *Editor) ClearClipboard() { e.board.Clear() }

// CopySelection puts the selected object on the clipboard.
func (e *Editor) CopySelection() bool {
	sel := e.SelectedObject()
	if sel == nil {
		return false
	}
	e.board.Set([]domain.Object{*sel})
	return true
}

// Paste adds the clipboard objects to the current page with fresh ids, offset by
// DuplicateOffset, as a single undo stop. The last pasted object is selected.
func (e *Editor) Paste() []string {
	objs := e.board.Get()
	if len(objs) == 0 {
		return nil
	}
	var ids []string
	e.mutate("paste", func(p *domain.Project) bool {
		page := currentObjects(p)
		if page == nil {
			return false
		}
		taken := p.ObjectIDs()
		for i := range objs {
			if !objs[i].Kind.Valid() {
				continue
			}
			e.renew(&objs[i], taken, DuplicateOffset)
			*page = append(*page, objs[i])
			ids = append(ids, objs[i].ID)
		}
		if len(ids) == 0 {
			return false
		}
		p.SetSelectedObject(ids[len(ids)-1])
		return true
	})
	return ids
}
