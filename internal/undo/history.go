/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds the history when no limit is configured.
const DefaultMaxEntries = 50

// Snapshot is one committed state. Blob content is opaque to the history;
// size is estimated as len(Blob). TS is when the snapshot was captured.
type Snapshot struct {
	Blob  []byte
	TS    time.Time
	Label string
}

// Config controls depth and memory caps and coalescing behavior.
type Config struct {
	// MaxEntries limits the number of snapshots kept (0 means DefaultMaxEntries).
	MaxEntries int
	// MaxBytes is a soft cap; older entries are pruned when exceeded, but the
	// current entry is always kept. 0 means unlimited.
	MaxBytes int
	// MinInterval coalesces a commit captured within the interval of the current
	// top entry, replacing it instead of pushing a new one. 0 disables coalescing.
	MinInterval time.Duration
}

// History is a bounded list of snapshots with a cursor pointing at the
// current state. It is safe for concurrent use.
type History struct {
	cfg Config
	mu  sync.Mutex

	entries []Snapshot
	cursor  int
	// accounting
	totalBytes int
}

// New returns a history holding initial as its only entry (cursor 0).
func New(cfg Config, initial Snapshot) *History {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.MaxBytes < 0 {
		cfg.MaxBytes = 0
	}
	h := &History{cfg: cfg}
	h.resetLocked(initial)
	return h
}

// Config returns the effective configuration.
func (h *History) Config() Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cfg
}

// Commit records s as the new current state. Any redo future is discarded.
// If s falls within MinInterval of the current top entry and there is something
// to undo to, the top entry is replaced instead.
func (h *History) Commit(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Drop the redo future.
	for i := h.cursor + 1; i < len(h.entries); i++ {
		h.totalBytes -= len(h.entries[i].Blob)
	}
	h.entries = h.entries[:h.cursor+1]

	if h.cfg.MinInterval > 0 && h.cursor > 0 {
		last := h.entries[h.cursor]
		if s.TS.Sub(last.TS) < h.cfg.MinInterval {
			h.totalBytes += len(s.Blob) - len(last.Blob)
			h.entries[h.cursor] = s
			h.enforceCapsLocked()
			return
		}
	}
	h.entries = append(h.entries, s)
	h.cursor = len(h.entries) - 1
	h.totalBytes += len(s.Blob)
	h.enforceCapsLocked()
}

// Undo moves the cursor back and returns the snapshot now current.
func (h *History) Undo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return Snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo moves the cursor forward and returns the snapshot now current.
func (h *History) Redo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= len(h.entries)-1 {
		return Snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.entries)-1
}

// Current returns the snapshot at the cursor.
func (h *History) Current() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Reset discards all entries and starts over from s.
func (h *History) Reset(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resetLocked(s)
}

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (entries int, cursor int, totalBytes int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries), h.cursor, h.totalBytes
}

func (h *History) resetLocked(s Snapshot) {
	h.entries = []Snapshot{s}
	h.cursor = 0
	h.totalBytes = len(s.Blob)
}

func (h *History) enforceCapsLocked() {
	drop := 0
	if n := len(h.entries); n > h.cfg.MaxEntries {
		drop = n - h.cfg.MaxEntries
	}
	bytes := h.totalBytes
	for i := 0; i < drop; i++ {
		bytes -= len(h.entries[i].Blob)
	}
	// Global memory cap: prune oldest, never the current entry.
	for h.cfg.MaxBytes > 0 && bytes > h.cfg.MaxBytes && drop < h.cursor {
		bytes -= len(h.entries[drop].Blob)
		drop++
	}
	if drop == 0 {
		return
	}
	h.entries = append([]Snapshot{}, h.entries[drop:]...)
	h.totalBytes = bytes
	h.cursor -= drop
	if h.cursor < 0 {
		h.cursor = 0
	}
}
