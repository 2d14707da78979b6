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
	"reflect"
	"testing"
	"time"

	"cardstudio/internal/domain"
	applog "cardstudio/internal/log"
	"cardstudio/internal/undo"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// newTestEditor returns an editor with deterministic ids and time.
func newTestEditor(opts ...Option) *Editor {
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		WithLogger(applog.Discard()),
	}
	return New(append(base, opts...)...)
}

func exported(t *testing.T, e *Editor) string {
	t.Helper()
	b, err := e.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	return string(b)
}

func TestNewProjectDefaults(t *testing.T) {
	e := newTestEditor()
	p := e.Project()
	if p.ID == "" || p.Name != "Untitled" {
		t.Fatalf("unexpected project identity %q %q", p.ID, p.Name)
	}
	if len(p.Pages) != 1 || p.SelectedPageID != p.Pages[0].ID {
		t.Fatalf("expected one selected page, got %+v", p.Pages)
	}
	pg := p.Pages[0]
	if pg.Name != "Page 1" || pg.Width != 800 || pg.Height != 1120 || pg.BackgroundColor != "#ffffff" {
		t.Fatalf("unexpected default page %+v", pg)
	}
	if p.SelectedObjectID != nil {
		t.Fatalf("new project must have no selection")
	}
	if e.CanUndo() || e.CanRedo() {
		t.Fatalf("fresh history must be empty")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("new project invalid: %v", err)
	}
}

func TestWithPageDefaultsAndInvalidInitialProject(t *testing.T) {
	e := newTestEditor(WithPageDefaults(PageDefaults{Width: 500, Height: 700, Background: "#fef3c7"}))
	pg := e.CurrentPage()
	if pg.Width != 500 || pg.Height != 700 || pg.BackgroundColor != "#fef3c7" {
		t.Fatalf("page defaults not applied: %+v", pg)
	}
	bad := domain.Project{ID: "x", Name: "broken"}
	e = newTestEditor(WithProject(bad))
	if e.Project().ID == "x" {
		t.Fatalf("invalid initial project must be ignored")
	}
}

func TestAddShapeUndoRedoScenario(t *testing.T) {
	e := newTestEditor()
	id := e.AddShape("circle")
	if id == "" {
		t.Fatalf("AddShape returned empty id")
	}
	o := e.Object(id)
	if o == nil || o.Kind != domain.KindShape || o.Shape.ShapeType != "circle" || o.Fill != "#ef4444" {
		t.Fatalf("unexpected circle %+v", o)
	}
	if sel := e.SelectedObject(); sel == nil || sel.ID != id {
		t.Fatalf("new object should be selected")
	}
	if !e.Undo() {
		t.Fatalf("Undo should succeed")
	}
	if len(e.CurrentPage().Objects) != 0 {
		t.Fatalf("undo should remove the circle")
	}
	if !e.CanRedo() {
		t.Fatalf("redo should be available")
	}
	if !e.Redo() {
		t.Fatalf("Redo should succeed")
	}
	if o := e.Object(id); o == nil {
		t.Fatalf("redo should restore the circle with the same id")
	}
	if e.Redo() {
		t.Fatalf("Redo at the end of history must report false")
	}
}

func TestUndoRedoInverse(t *testing.T) {
	e := newTestEditor()
	states := []string{exported(t, e)}
	for i := 0; i < 10; i++ {
		e.AddText(fmt.Sprintf("line %d", i))
		states = append(states, exported(t, e))
	}
	for i := len(states) - 2; i >= 0; i-- {
		if !e.Undo() {
			t.Fatalf("undo %d failed", i)
		}
		if got := exported(t, e); got != states[i] {
			t.Fatalf("state after undo differs at %d", i)
		}
	}
	if e.Undo() {
		t.Fatalf("undo past the start must report false")
	}
	for i := 1; i < len(states); i++ {
		if !e.Redo() {
			t.Fatalf("redo %d failed", i)
		}
		if got := exported(t, e); got != states[i] {
			t.Fatalf("state after redo differs at %d", i)
		}
	}
}

func TestUndoRedoRestoresLiveValues(t *testing.T) {
	e := newTestEditor()
	// struct literals outside the wire form: no text payload, children on a shape
	e.AddObject(domain.Object{ID: "t1", Kind: domain.KindText})
	e.AddObject(domain.Object{ID: "s1", Kind: domain.KindShape, Children: []domain.Object{domain.NewText("c1", "x", 0, 0)}})

	if o := e.Object("t1"); o == nil || o.Text == nil {
		t.Fatalf("text object should carry a text payload once added: %+v", o)
	}
	if o := e.Object("s1"); o == nil || o.Shape == nil || len(o.Children) != 0 {
		t.Fatalf("shape object should have a shape payload and no children: %+v", o)
	}

	before := e.Project()
	if !e.Undo() || !e.Undo() {
		t.Fatalf("two undos expected")
	}
	if !e.Redo() || !e.Redo() {
		t.Fatalf("two redos expected")
	}
	if after := e.Project(); !reflect.DeepEqual(before, after) {
		t.Fatalf("undo/redo changed the project:\nbefore %+v\nafter  %+v", before.Pages[0].Objects, after.Pages[0].Objects)
	}
}

func TestUndoRedoInverseByValue(t *testing.T) {
	e := newTestEditor()
	states := []domain.Project{e.Project()}
	e.AddObject(domain.Object{ID: "r", Kind: domain.KindShape, Geometry: domain.Geometry{Left: 1, Top: 2}})
	states = append(states, e.Project())
	e.UpdateObject("r", domain.Fields{"fill": "#abcdef"})
	states = append(states, e.Project())
	e.AddObject(domain.Object{ID: "i", Kind: domain.KindImage})
	states = append(states, e.Project())

	for i := len(states) - 2; i >= 0; i-- {
		e.Undo()
		if !reflect.DeepEqual(e.Project(), states[i]) {
			t.Fatalf("undo to state %d differs", i)
		}
	}
	for i := 1; i < len(states); i++ {
		e.Redo()
		if !reflect.DeepEqual(e.Project(), states[i]) {
			t.Fatalf("redo to state %d differs", i)
		}
	}
}

func TestHistoryCapacity(t *testing.T) {
	e := newTestEditor()
	for i := 0; i < 60; i++ {
		e.AddText("x")
	}
	entries, _, _ := e.HistoryStats()
	if entries != undo.DefaultMaxEntries {
		t.Fatalf("expected %d entries, got %d", undo.DefaultMaxEntries, entries)
	}
	undos := 0
	for e.Undo() {
		undos++
	}
	if undos != undo.DefaultMaxEntries-1 {
		t.Fatalf("expected %d undos, got %d", undo.DefaultMaxEntries-1, undos)
	}
	if n := len(e.CurrentPage().Objects); n != 60-undos {
		t.Fatalf("oldest reachable state should hold %d objects, got %d", 60-undos, n)
	}
}

func TestCommitTruncatesRedo(t *testing.T) {
	e := newTestEditor()
	e.AddText("a")
	e.AddText("b")
	e.Undo()
	e.AddShape("star")
	if e.CanRedo() {
		t.Fatalf("a new change must drop the redo future")
	}
}

func TestNoOpsDoNotCommit(t *testing.T) {
	e := newTestEditor()
	id := e.AddText("hello")
	before, _, _ := e.HistoryStats()
	calls := 0
	e.Subscribe(func(domain.Project) { calls++ })

	if e.UpdateObject("missing", domain.Fields{"left": 5}) {
		t.Fatalf("update of unknown id must be a no-op")
	}
	if e.UpdateObject(id, domain.Fields{"left": float64(defaultLeft)}) {
		t.Fatalf("update that changes nothing must be a no-op")
	}
	if e.UpdateObject(id, domain.Fields{"left": "not a number"}) {
		t.Fatalf("invalid field must be rejected")
	}
	if e.SelectObject(id) {
		t.Fatalf("selecting the selected object must be a no-op")
	}
	if e.SelectObject("nope") {
		t.Fatalf("selecting an unknown object must be a no-op")
	}
	if e.DeleteObject("nope") || e.DuplicateObject("nope") != "" || e.AddShape("blob") != "" {
		t.Fatalf("unknown targets must be ignored")
	}
	if e.DeletePage("nope") || e.SelectPage("nope") {
		t.Fatalf("unknown pages must be ignored")
	}
	after, _, _ := e.HistoryStats()
	if after != before || calls != 0 {
		t.Fatalf("no-ops must not commit or notify (entries %d->%d, calls %d)", before, after, calls)
	}
}

func TestUpdateObject(t *testing.T) {
	e := newTestEditor(WithClock(func() time.Time { return fixedNow.Add(time.Hour) }))
	id := e.AddText("hello")
	if !e.UpdateObject(id, domain.Fields{"left": 250, "fill": "#ff0000", "id": "hijack"}) {
		t.Fatalf("UpdateObject should report a change")
	}
	o := e.Object(id)
	if o == nil || o.Left != 250 || o.Fill != "#ff0000" {
		t.Fatalf("update not applied: %+v", o)
	}
	ok, err := e.UpdateObjectJSON(id, []byte(`{"text":"bye","fontSize":40}`))
	if err != nil || !ok {
		t.Fatalf("UpdateObjectJSON = %v, %v", ok, err)
	}
	if o := e.Object(id); o.Text.Text != "bye" || *o.Text.FontSize != 40 {
		t.Fatalf("json update not applied: %+v", o.Text)
	}
	if _, err := e.UpdateObjectJSON(id, []byte(`{`)); err == nil {
		t.Fatalf("malformed JSON must fail")
	}
	if !e.Project().Metadata.UpdatedAt.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("updatedAt must follow the clock")
	}
}

func TestSilentUpdateBypassesHistory(t *testing.T) {
	e := newTestEditor()
	id := e.AddShape("rectangle")
	entries, cursor, _ := e.HistoryStats()
	updated := e.Project().Metadata.UpdatedAt
	var seen domain.Project
	e.Subscribe(func(p domain.Project) { seen = p })

	if !e.UpdateObjectSilent(id, domain.Fields{"left": 400}) {
		t.Fatalf("silent update should apply")
	}
	if n, c, _ := e.HistoryStats(); n != entries || c != cursor {
		t.Fatalf("silent update must not commit")
	}
	if o := domain.FindObject(seen.Pages[0].Objects, id); o == nil || o.Left != 400 {
		t.Fatalf("subscribers must see silent updates")
	}
	if !e.Project().Metadata.UpdatedAt.Equal(updated) {
		t.Fatalf("silent update must not touch updatedAt")
	}
	// A tracked change afterwards records the silent change too.
	e.UpdateObject(id, domain.Fields{"top": 10})
	e.Undo()
	if o := e.Object(id); o.Left != defaultLeft {
		t.Fatalf("undo should return to the last committed state, left=%v", o.Left)
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	e := newTestEditor()
	a := e.AddText("a")
	b := e.AddText("b")
	e.SelectObject(a)
	if !e.DeleteObject(b) {
		t.Fatalf("DeleteObject failed")
	}
	if e.SelectedObject() != nil {
		t.Fatalf("deleting clears the selection")
	}
	if e.SelectObject(a); e.SelectedObject().ID != a {
		t.Fatalf("select failed")
	}
	if !e.SelectObject("") || e.SelectedObject() != nil {
		t.Fatalf("empty id clears selection")
	}
}

func TestDuplicateObject(t *testing.T) {
	e := newTestEditor()
	id := e.AddShape("heart")
	dup := e.DuplicateObject(id)
	if dup == "" || dup == id {
		t.Fatalf("duplicate needs a new id, got %q", dup)
	}
	orig, cp := e.Object(id), e.Object(dup)
	if cp.Left != orig.Left+DuplicateOffset || cp.Top != orig.Top+DuplicateOffset {
		t.Fatalf("duplicate must be offset by %d", DuplicateOffset)
	}
	if e.SelectedObject().ID != dup {
		t.Fatalf("duplicate should be selected")
	}
	objs := e.CurrentPage().Objects
	if objs[len(objs)-1].ID != dup {
		t.Fatalf("duplicate should be topmost")
	}
}

func TestAddObjectAssignsUniqueIDs(t *testing.T) {
	e := newTestEditor()
	a := e.AddObject(domain.NewText("same", "a", 0, 0))
	b := e.AddObject(domain.NewText("same", "b", 0, 0))
	if a != "same" || b == "same" || b == "" {
		t.Fatalf("colliding id must be replaced: %q %q", a, b)
	}
	if e.AddObject(domain.Object{ID: "k", Kind: "sticker"}) != "" {
		t.Fatalf("unknown kind must be rejected")
	}
	g := domain.NewGroup("", "g", []domain.Object{domain.NewText("same", "c", 0, 0)})
	gid := e.AddObject(g)
	if grp := e.Object(gid); grp == nil || grp.Children[0].ID == "same" {
		t.Fatalf("group children must get unique ids: %+v", grp)
	}
}

func TestCatalogHelpers(t *testing.T) {
	e := newTestEditor()
	icon := e.AddIcon(IconDescriptor{Name: "cake", Prefix: "mdi", SVG: "<svg/>"})
	if o := e.Object(icon); o.Kind != domain.KindIcon || o.Fill != "#f472b6" || *o.Width != 56 || o.Icon.Prefix != "mdi" {
		t.Fatalf("unexpected icon %+v", o)
	}
	txt := e.AddText("Save the date")
	if o := e.Object(txt); o.Text.FontFamily != "Arial" || *o.Text.FontSize != 32 || o.Fill != "#111827" {
		t.Fatalf("unexpected text %+v", o.Text)
	}
	img := e.AddImage("https://cdn.example/a.png")
	if o := e.Object(img); o.Image.ImageURL != "https://cdn.example/a.png" || *o.Width != 300 {
		t.Fatalf("unexpected image %+v", o)
	}
}

func TestReorder(t *testing.T) {
	e := newTestEditor()
	a := e.AddText("a")
	b := e.AddText("b")
	c := e.AddText("c")
	order := func() string {
		s := ""
		for _, o := range e.CurrentPage().Objects {
			s += o.ID + ","
		}
		return s
	}
	if !e.SendToBack(c) || order() != c+","+a+","+b+"," {
		t.Fatalf("SendToBack: %s", order())
	}
	if !e.BringToFront(c) || order() != a+","+b+","+c+"," {
		t.Fatalf("BringToFront: %s", order())
	}
	if e.MoveObjectUp(c) {
		t.Fatalf("topmost cannot move up")
	}
	if e.MoveObjectDown(a) {
		t.Fatalf("bottom cannot move down")
	}
	if !e.MoveObjectUp(a) || order() != b+","+a+","+c+"," {
		t.Fatalf("MoveObjectUp: %s", order())
	}
	if !e.MoveObjectDown(c) || order() != b+","+c+","+a+"," {
		t.Fatalf("MoveObjectDown: %s", order())
	}
}
