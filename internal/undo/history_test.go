/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"fmt"
	"testing"
	"time"
)

func snap(s string, ts time.Time) Snapshot { return Snapshot{Blob: []byte(s), TS: ts} }

func TestUndoRedoBasic(t *testing.T) {
	t0 := time.Now()
	h := New(Config{}, snap("a", t0))
	if h.CanUndo() || h.CanRedo() {
		t.Fatalf("fresh history must have nothing to undo or redo")
	}
	h.Commit(snap("b", t0.Add(time.Second)))
	if entries, cursor, _ := h.Stats(); entries != 2 || cursor != 1 {
		t.Fatalf("expected 2 entries at cursor 1, got entries=%d cursor=%d", entries, cursor)
	}
	s, ok := h.Undo()
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("undo expected 'a', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if _, ok := h.Undo(); ok {
		t.Fatalf("undo at cursor 0 must be a no-op")
	}
	s, ok = h.Redo()
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if _, ok := h.Redo(); ok {
		t.Fatalf("redo at the top must be a no-op")
	}
}

func TestInverseLaw(t *testing.T) {
	t0 := time.Now()
	h := New(Config{}, snap("s0", t0))
	const n = 20
	for i := 1; i <= n; i++ {
		h.Commit(snap(fmt.Sprintf("s%d", i), t0.Add(time.Duration(i)*time.Second)))
	}
	for i := 0; i < n; i++ {
		if _, ok := h.Undo(); !ok {
			t.Fatalf("undo %d failed", i)
		}
	}
	if got := string(h.Current().Blob); got != "s0" {
		t.Fatalf("after %d undos expected s0, got %s", n, got)
	}
	for i := 0; i < n; i++ {
		h.Redo()
	}
	if got := string(h.Current().Blob); got != fmt.Sprintf("s%d", n) {
		t.Fatalf("after %d redos expected s%d, got %s", n, n, got)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	t0 := time.Now()
	h := New(Config{}, snap("s0", t0))
	for i := 1; i <= 60; i++ {
		h.Commit(snap(fmt.Sprintf("s%d", i), t0.Add(time.Duration(i)*time.Second)))
	}
	entries, cursor, _ := h.Stats()
	if entries != DefaultMaxEntries || cursor != DefaultMaxEntries-1 {
		t.Fatalf("expected %d entries, got entries=%d cursor=%d", DefaultMaxEntries, entries, cursor)
	}
	undos := 0
	for h.CanUndo() {
		h.Undo()
		undos++
	}
	if undos >= DefaultMaxEntries {
		t.Fatalf("expected fewer than %d undos, got %d", DefaultMaxEntries, undos)
	}
	if got := string(h.Current().Blob); got == "s0" {
		t.Fatalf("original state should have been evicted")
	}
}

func TestCommitTruncatesRedo(t *testing.T) {
	t0 := time.Now()
	h := New(Config{}, snap("a", t0))
	h.Commit(snap("b", t0.Add(time.Second)))
	h.Commit(snap("c", t0.Add(2*time.Second)))
	h.Undo()
	h.Commit(snap("d", t0.Add(3*time.Second)))
	if h.CanRedo() {
		t.Fatalf("redo must be impossible after a new commit")
	}
	s, _ := h.Undo()
	if string(s.Blob) != "b" {
		t.Fatalf("expected b below d, got %q", s.Blob)
	}
}

func TestCoalesce(t *testing.T) {
	t0 := time.Now()
	h := New(Config{MinInterval: 50 * time.Millisecond}, snap("0", t0))
	h.Commit(snap("1", t0.Add(time.Second)))
	h.Commit(snap("2", t0.Add(time.Second+10*time.Millisecond))) // coalesce
	if entries, _, _ := h.Stats(); entries != 2 {
		t.Fatalf("expected coalesced to 2 entries, got %d", entries)
	}
	if got := string(h.Current().Blob); got != "2" {
		t.Fatalf("expected coalesced snapshot '2', got %q", got)
	}
	s, ok := h.Undo()
	if !ok || string(s.Blob) != "0" {
		t.Fatalf("undo should skip the coalesced frame, got ok=%v blob=%q", ok, s.Blob)
	}
}

func TestCoalesceNeverReplacesInitial(t *testing.T) {
	t0 := time.Now()
	h := New(Config{MinInterval: time.Hour}, snap("0", t0))
	h.Commit(snap("1", t0))
	if !h.CanUndo() {
		t.Fatalf("first commit must remain undoable")
	}
}

func TestMaxBytesKeepsCurrent(t *testing.T) {
	t0 := time.Now()
	h := New(Config{MaxBytes: 12}, snap("xxxxx", t0))
	for i := 1; i <= 10; i++ {
		h.Commit(snap("yyyyy", t0.Add(time.Duration(i)*time.Second)))
	}
	entries, cursor, total := h.Stats()
	if total > 12 || entries != 2 || cursor != 1 {
		t.Fatalf("expected byte cap to keep 2 entries, got entries=%d cursor=%d bytes=%d", entries, cursor, total)
	}
	h2 := New(Config{MaxBytes: 1}, snap("big", t0))
	h2.Commit(snap("bigger", t0.Add(time.Second)))
	if string(h2.Current().Blob) != "bigger" {
		t.Fatalf("current entry must survive the byte cap")
	}
}

func TestReset(t *testing.T) {
	t0 := time.Now()
	h := New(Config{MaxEntries: 3}, snap("a", t0))
	h.Commit(snap("b", t0.Add(time.Second)))
	h.Reset(snap("z", t0))
	if h.CanUndo() || h.CanRedo() || string(h.Current().Blob) != "z" {
		t.Fatalf("reset should leave a single entry")
	}
	if h.Config().MaxEntries != 3 {
		t.Fatalf("reset must keep the configuration")
	}
}
