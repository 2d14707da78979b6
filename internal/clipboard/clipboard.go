/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clipboard holds copied objects outside of the undo history and can
// mirror them to the operating system clipboard.
package clipboard

import (
	"encoding/json"
	"log/slog"
	"sync"

	sysclip "github.com/atotto/clipboard"

	"cardstudio/internal/domain"
	applog "cardstudio/internal/log"
)

// Mirror receives the JSON of every Set.
type Mirror interface {
	WriteAll(text string) error
}

// SystemMirror writes to the OS clipboard.
type SystemMirror struct{}

func (SystemMirror) WriteAll(text string) error { return sysclip.WriteAll(text) }

// ReadSystem returns the current OS clipboard text.
func ReadSystem() (string, error) { return sysclip.ReadAll() }

// Board holds a detached copy of objects, or nothing.
type Board struct {
	mu      sync.Mutex
	objects []domain.Object
	mirror  Mirror
	log     *slog.Logger
}

// New returns an empty board. mirror may be nil.
func New(mirror Mirror, logger *slog.Logger) *Board {
	if logger == nil {
		logger = applog.WithComponent("clipboard")
	}
	return &Board{mirror: mirror, log: logger}
}

// Set replaces the contents. nil clears the board.
func (b *Board) Set(objs []domain.Object) {
	b.mu.Lock()
	b.objects = domain.CloneObjects(objs)
	mirror := b.mirror
	b.mu.Unlock()
	if mirror == nil || objs == nil {
		return
	}
	data, err := json.Marshal(objs)
	if err != nil {
		b.log.Warn("clipboard encode failed", slog.Any("err", err))
		return
	}
	if err := mirror.WriteAll(string(data)); err != nil {
		b.log.Warn("system clipboard write failed", slog.Any("err", err))
	}
}

// Get returns a copy of the contents, or nil when empty.
func (b *Board) Get() []domain.Object {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.CloneObjects(b.objects)
}

func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects = nil
}

// Empty reports whether the board holds nothing.
func (b *Board) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects == nil
}

// Decode parses clipboard text produced by a mirror back into objects.
func Decode(text string) ([]domain.Object, error) {
	var objs []domain.Object
	if err := json.Unmarshal([]byte(text), &objs); err != nil {
		return nil, err
	}
	return objs, nil
}
