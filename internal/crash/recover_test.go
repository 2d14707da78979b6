/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() { _, _ = io.Copy(io.Discard, r); close(done) }()
	t.Cleanup(func() {
		_ = w.Close()
		<-done
		os.Stderr = old
	})
}

func interceptExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })
	return &code
}

func filesWith(t *testing.T, dir, prefix, suffix string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

func TestRecover_WritesReportAndAutosave(t *testing.T) {
	silenceStderr(t)
	code := interceptExit(t)
	dir := t.TempDir()
	project := []byte(`{"id":"p1","pages":[]}`)

	func() {
		defer Recover(dir, func() ([]byte, error) { return project, nil })
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("exit code = %d, want 2", *code)
	}
	reports := filesWith(t, dir, "crash-", ".log")
	if len(reports) != 1 {
		t.Fatalf("expected one crash report, got %v", reports)
	}
	b, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("CardStudio Crash Report\n")) {
		t.Fatalf("unexpected header: %q", b[:min(len(b), 40)])
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", b)
	}
	if !bytes.Contains(b, []byte("Stack:")) {
		t.Fatalf("report missing stack")
	}

	saves := filesWith(t, dir, "crash-", ".json")
	if len(saves) != 1 {
		t.Fatalf("expected one autosave, got %v", saves)
	}
	got, _ := os.ReadFile(saves[0])
	if !bytes.Equal(got, project) {
		t.Fatalf("autosave content = %s", got)
	}
}

func TestRecover_NoPanicDoesNothing(t *testing.T) {
	code := interceptExit(t)
	dir := t.TempDir()
	func() {
		defer Recover(dir, nil)
	}()
	if *code != -1 {
		t.Fatalf("exit called without panic")
	}
	if got := filesWith(t, dir, "crash-", ""); len(got) != 0 {
		t.Fatalf("unexpected files: %v", got)
	}
}

func TestRecover_SnapshotFailureStillReports(t *testing.T) {
	silenceStderr(t)
	code := interceptExit(t)
	dir := t.TempDir()

	func() {
		defer Recover(dir, func() ([]byte, error) { return nil, errors.New("no project") })
		panic(errors.New("bad state"))
	}()

	if *code != 2 {
		t.Fatalf("exit code = %d, want 2", *code)
	}
	if got := filesWith(t, dir, "crash-", ".log"); len(got) != 1 {
		t.Fatalf("expected report, got %v", got)
	}
	if got := filesWith(t, dir, "crash-", ".json"); len(got) != 0 {
		t.Fatalf("no autosave expected, got %v", got)
	}
}

func TestRecover_PanickingSnapshotIsContained(t *testing.T) {
	silenceStderr(t)
	code := interceptExit(t)
	dir := t.TempDir()

	func() {
		defer Recover(dir, func() ([]byte, error) { panic("snapshot exploded") })
		panic("first")
	}()

	if *code != 2 {
		t.Fatalf("exit code = %d, want 2", *code)
	}
	if got := filesWith(t, dir, "crash-", ".log"); len(got) != 1 {
		t.Fatalf("expected report, got %v", got)
	}
}

func TestRecover_CreatesMissingDir(t *testing.T) {
	silenceStderr(t)
	interceptExit(t)
	dir := filepath.Join(t.TempDir(), "nested", "crash")

	func() {
		defer Recover(dir, func() ([]byte, error) { return []byte("{}"), nil })
		panic("boom")
	}()

	if got := filesWith(t, dir, "crash-", ".log"); len(got) != 1 {
		t.Fatalf("expected report in created dir, got %v", got)
	}
}
