/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the single mutator of a card project. Every tracked change is
// applied to a copy, committed to the undo history as a serialized snapshot and
// then announced to subscribers.
package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"cardstudio/internal/clipboard"
	"cardstudio/internal/config"
	"cardstudio/internal/domain"
	applog "cardstudio/internal/log"
	"cardstudio/internal/undo"
)

// MaxNotifyDepth bounds re-entrant notifications caused by listeners that mutate.
// A mutation made beyond the bound is still committed, but no listener hears of
// it: the last project a listener received can then lag behind Project().
const MaxNotifyDepth = 8

// Listener receives a copy of the project after each change.
type Listener func(p domain.Project)

// PageDefaults describes pages created by AddPage and new projects.
type PageDefaults struct {
	Width      int
	Height     int
	Background string
}

type listenerEntry struct {
	id int
	fn Listener
}

// Editor owns one project. The zero value is not usable; call New.
type Editor struct {
	mu      sync.Mutex
	project domain.Project
	hist    *undo.History
	board   *clipboard.Board
	// out-of-band page thumbnails, never part of history
	thumbs map[string]string

	lmu          sync.Mutex
	listeners    []listenerEntry
	nextListener int
	depth        atomic.Int32

	clock   func() time.Time
	newID   func() string
	log     *slog.Logger
	pages   PageDefaults
	histCfg undo.Config
	mirror  clipboard.Mirror
	initial *domain.Project
}

// Option configures an Editor.
type Option func(*Editor)

func WithHistoryConfig(cfg undo.Config) Option { return func(e *Editor) { e.histCfg = cfg } }

func WithClock(now func() time.Time) Option { return func(e *Editor) { e.clock = now } }

// WithIDGenerator replaces the ULID source used for new object and page ids.
func WithIDGenerator(gen func() string) Option { return func(e *Editor) { e.newID = gen } }

func WithLogger(l *slog.Logger) Option { return func(e *Editor) { e.log = l } }

func WithClipboardMirror(m clipboard.Mirror) Option { return func(e *Editor) { e.mirror = m } }

func WithPageDefaults(d PageDefaults) Option { return func(e *Editor) { e.pages = d } }

// WithProject starts the editor on p instead of a fresh project. A project that
// fails validation is ignored with a warning.
func WithProject(p domain.Project) Option {
	return func(e *Editor) {
		c := p.Clone()
		e.initial = &c
	}
}

// ConfigOptions maps the editor section of the application config to options.
func ConfigOptions(cfg config.AppConfig) []Option {
	ec := cfg.Editor
	opts := []Option{
		WithHistoryConfig(undo.Config{
			MaxEntries:  ec.HistoryLimit,
			MaxBytes:    ec.HistoryMaxBytes,
			MinInterval: time.Duration(ec.CoalesceMs) * time.Millisecond,
		}),
		WithPageDefaults(PageDefaults{Width: ec.PageWidth, Height: ec.PageHeight, Background: ec.Background}),
	}
	if cfg.Clipboard.System {
		opts = append(opts, WithClipboardMirror(clipboard.SystemMirror{}))
	}
	return opts
}

// NewULID returns a fresh lexicographically sortable id.
func NewULID() string { return ulid.Make().String() }

// New constructs an editor holding one project with a single default page.
func New(opts ...Option) *Editor {
	e := &Editor{
		clock:  func() time.Time { return time.Now().UTC().Round(0) },
		newID:  NewULID,
		thumbs: map[string]string{},
	}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = applog.WithComponent("editor")
	}
	if e.pages.Width <= 0 {
		e.pages.Width = 800
	}
	if e.pages.Height <= 0 {
		e.pages.Height = 1120
	}
	if e.pages.Background == "" {
		e.pages.Background = "#ffffff"
	}
	e.board = clipboard.New(e.mirror, e.log)

	if e.initial != nil {
		if err := e.initial.Validate(); err != nil {
			e.log.Warn("ignoring invalid initial project", slog.Any("err", err))
		} else {
			e.project = *e.initial
		}
		e.initial = nil
	}
	if e.project.ID == "" {
		now := e.clock()
		first := domain.NewPage(e.newID(), "Page 1", e.pages.Width, e.pages.Height, e.pages.Background)
		e.project = domain.NewProject(uuid.NewString(), "Untitled", first, now)
	}
	canon, blob, err := encode(e.project)
	if err != nil {
		e.log.Error("encode initial project failed", slog.Any("err", err))
	} else {
		e.project = canon
	}
	e.hist = undo.New(e.histCfg, undo.Snapshot{Blob: blob, TS: e.clock(), Label: "init"})
	return e
}

// Project returns a copy of the current state.
func (e *Editor) Project() domain.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project.Clone()
}

// CurrentPage returns a copy of the selected page.
func (e *Editor) CurrentPage() *domain.Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clonePage(e.project.CurrentPage())
}

// Page returns a copy of the page with id, or nil.
func (e *Editor) Page(id string) *domain.Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clonePage(e.project.Page(id))
}

// Object returns a copy of the object with id, looking at the current page first
// and then at the other pages. It returns nil when no page holds id.
func (e *Editor) Object(id string) *domain.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pg := e.project.CurrentPage(); pg != nil {
		if o := domain.FindObject(pg.Objects, id); o != nil {
			c := o.Clone()
			return &c
		}
	}
	for i := range e.project.Pages {
		if o := domain.FindObject(e.project.Pages[i].Objects, id); o != nil {
			c := o.Clone()
			return &c
		}
	}
	return nil
}

// SelectedObject returns a copy of the selected object, or nil.
func (e *Editor) SelectedObject() *domain.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	sel := e.project.SelectedObject()
	pg := e.project.CurrentPage()
	if sel == "" || pg == nil {
		return nil
	}
	if o := domain.FindObject(pg.Objects, sel); o != nil {
		c := o.Clone()
		return &c
	}
	return nil
}

func clonePage(pg *domain.Page) *domain.Page {
	if pg == nil {
		return nil
	}
	c := pg.Clone()
	return &c
}

// Subscribe registers fn to run after every change, in registration order.
// The returned function removes it; calling it twice is harmless.
func (e *Editor) Subscribe(fn Listener) (unsubscribe func()) {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		e.lmu.Lock()
		defer e.lmu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// mutate runs fn on a copy of the project. If fn reports a change the copy
// becomes current, is committed to history and subscribers are notified.
func (e *Editor) mutate(op string, fn func(p *domain.Project) bool) bool {
	e.mu.Lock()
	work := e.project.Clone()
	if !fn(&work) {
		e.mu.Unlock()
		return false
	}
	now := e.clock()
	work.Metadata.UpdatedAt = now
	canon, blob, err := encode(work)
	if err != nil {
		e.mu.Unlock()
		e.log.Error("encode snapshot failed", slog.String("op", op), slog.Any("err", err))
		return false
	}
	e.project = canon
	e.hist.Commit(undo.Snapshot{Blob: blob, TS: now, Label: op})
	e.mu.Unlock()
	e.log.Debug("commit", slog.String("op", op))
	e.notify()
	return true
}

// mutateSilent applies fn to the live project without touching history.
func (e *Editor) mutateSilent(fn func(p *domain.Project) bool) bool {
	e.mu.Lock()
	work := e.project.Clone()
	if !fn(&work) {
		e.mu.Unlock()
		return false
	}
	canon, _, err := encode(work)
	if err != nil {
		e.mu.Unlock()
		e.log.Error("encode silent update failed", slog.Any("err", err))
		return false
	}
	e.project = canon
	e.mu.Unlock()
	e.notify()
	return true
}

// encode returns the snapshot blob of p together with p decoded back from it.
// The live project is always the decoded form, so undo and redo restore
// exactly what readers saw.
func encode(p domain.Project) (domain.Project, []byte, error) {
	blob, err := json.Marshal(p)
	if err != nil {
		return p, nil, err
	}
	var canon domain.Project
	if err := json.Unmarshal(blob, &canon); err != nil {
		return p, nil, err
	}
	return canon, blob, nil
}

func (e *Editor) notify() {
	depth := e.depth.Add(1)
	defer e.depth.Add(-1)
	if depth > MaxNotifyDepth {
		e.log.Warn("notification dropped: listener recursion too deep", slog.Int("depth", int(depth)))
		return
	}
	e.mu.Lock()
	snapshot := e.project.Clone()
	e.mu.Unlock()
	e.lmu.Lock()
	ls := append([]listenerEntry(nil), e.listeners...)
	e.lmu.Unlock()
	for _, l := range ls {
		e.call(l, snapshot.Clone())
	}
}

func (e *Editor) call(l listenerEntry, p domain.Project) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("listener panicked", slog.Int("listener", l.id), slog.Any("panic", r))
		}
	}()
	l.fn(p)
}

// Undo restores the previous snapshot. It reports false at the start of history.
func (e *Editor) Undo() bool { return e.travel("undo", e.hist.Undo) }

// Redo re-applies the next snapshot. It reports false at the end of history.
func (e *Editor) Redo() bool { return e.travel("redo", e.hist.Redo) }

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// HistoryStats returns entry count, cursor and retained bytes.
func (e *Editor) HistoryStats() (entries, cursor, bytes int) { return e.hist.Stats() }

func (e *Editor) travel(op string, step func() (undo.Snapshot, bool)) bool {
	e.mu.Lock()
	s, ok := step()
	if !ok {
		e.mu.Unlock()
		return false
	}
	var p domain.Project
	if err := json.Unmarshal(s.Blob, &p); err != nil {
		e.mu.Unlock()
		e.log.Error("decode snapshot failed", slog.String("op", op), slog.Any("err", err))
		return false
	}
	e.project = p
	e.mu.Unlock()
	e.log.Debug(op, slog.String("label", s.Label))
	e.notify()
	return true
}

// freshID returns a generated id not present in taken and records it.
func (e *Editor) freshID(taken map[string]bool) string {
	id := e.newID()
	for n := 2; taken[id]; n++ {
		if n%16 == 0 {
			id = fmt.Sprintf("%s-%d", e.newID(), n)
			continue
		}
		id = e.newID()
	}
	taken[id] = true
	return id
}

// derivedID returns base, or base with a numeric suffix, unused in taken.
func derivedID(base string, taken map[string]bool) string {
	id := base
	for n := 2; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	taken[id] = true
	return id
}
