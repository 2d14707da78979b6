/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package navigator

import (
	"errors"
	"strings"
	"testing"

	"cardstudio/internal/domain"
	"cardstudio/internal/editor"
	applog "cardstudio/internal/log"
)

type stubRenderer struct {
	calls []string
	fail  string
}

func (s *stubRenderer) Thumbnail(pg domain.Page, maxW int) ([]byte, error) {
	s.calls = append(s.calls, pg.ID)
	if pg.ID == s.fail {
		return nil, errors.New("render failed")
	}
	return []byte(pg.ID), nil
}

func newEditor() *editor.Editor {
	return editor.New(editor.WithLogger(applog.Discard()), editor.WithPageDefaults(editor.PageDefaults{Width: 200, Height: 280}))
}

func TestPagesAndCommands(t *testing.T) {
	ed := newEditor()
	n := New(ed, &stubRenderer{}, 0)
	first := n.Pages()[0].ID
	ed.AddText("hello")
	second := n.Add()
	pages := n.Pages()
	if len(pages) != 2 || !pages[1].Selected || pages[0].Objects != 1 || pages[1].Width != 200 {
		t.Fatalf("unexpected summaries %+v", pages)
	}
	if !n.Rename(second, "Inside") || n.Pages()[1].Name != "Inside" {
		t.Fatalf("Rename failed")
	}
	if !n.Select(first) || !n.Pages()[0].Selected {
		t.Fatalf("Select failed")
	}
	if !n.Delete(second) || len(n.Pages()) != 1 {
		t.Fatalf("Delete failed")
	}
	if n.Delete(first) {
		t.Fatalf("last page must stay")
	}
}

func TestRefreshThumbnailsIsNotHistory(t *testing.T) {
	ed := newEditor()
	r := &stubRenderer{}
	n := New(ed, r, 80)
	ed.AddPage()
	entries, _, _ := ed.HistoryStats()
	if err := n.RefreshThumbnails(); err != nil {
		t.Fatalf("RefreshThumbnails: %v", err)
	}
	for _, s := range n.Pages() {
		if !strings.HasPrefix(s.Thumbnail, "data:image/png;base64,") {
			t.Fatalf("page %s has no thumbnail", s.ID)
		}
	}
	if got, _, _ := ed.HistoryStats(); got != entries || ed.CanRedo() {
		t.Fatalf("thumbnails must not create undo stops")
	}
	r.fail = n.Pages()[0].ID
	if err := n.RefreshThumbnails(); err == nil {
		t.Fatalf("render failures are reported")
	}
}

func TestDuplicateCarriesThumbnail(t *testing.T) {
	ed := newEditor()
	n := New(ed, &stubRenderer{}, 0)
	src := n.Pages()[0].ID
	if err := n.RefreshPage(src); err != nil {
		t.Fatalf("RefreshPage: %v", err)
	}
	cp := n.Duplicate(src)
	if cp == "" || ed.PageThumbnail(cp) != ed.PageThumbnail(src) {
		t.Fatalf("duplicate should start with the source thumbnail")
	}
	if err := n.RefreshPage("nope"); err == nil {
		t.Fatalf("unknown page must fail")
	}
}

func TestDragAndDrop(t *testing.T) {
	ed := newEditor()
	n := New(ed, &stubRenderer{}, 0)
	a := n.Pages()[0].ID
	n.Add()
	c := n.Add()
	if n.DropAt(0) {
		t.Fatalf("drop without drag must be ignored")
	}
	if n.BeginDrag(7) {
		t.Fatalf("out of range drag source")
	}
	if !n.BeginDrag(2) {
		t.Fatalf("BeginDrag failed")
	}
	if from, ok := n.Dragging(); !ok || from != 2 {
		t.Fatalf("Dragging = %d, %v", from, ok)
	}
	if !n.DropAt(0) {
		t.Fatalf("DropAt failed")
	}
	if _, ok := n.Dragging(); ok {
		t.Fatalf("drop ends the drag")
	}
	pages := n.Pages()
	if pages[0].ID != c || pages[1].ID != a {
		t.Fatalf("page order after drop: %+v", pages)
	}
	n.BeginDrag(0)
	n.CancelDrag()
	if n.DropAt(1) {
		t.Fatalf("cancelled drag must not move pages")
	}
	// drag state is not part of the document
	if data, _ := ed.Export(); strings.Contains(string(data), "drag") {
		t.Fatalf("drag state leaked into the project")
	}
}

func TestWatchRefreshesCurrentPage(t *testing.T) {
	ed := newEditor()
	r := &stubRenderer{}
	n := New(ed, r, 0)
	stop := n.Watch()
	ed.AddShape("circle")
	cur := ed.CurrentPage().ID
	if ed.PageThumbnail(cur) == "" {
		t.Fatalf("watch should refresh the current page")
	}
	stop()
	calls := len(r.calls)
	ed.AddShape("star")
	if len(r.calls) != calls {
		t.Fatalf("stopped watcher must not render")
	}
}
