/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file plus an autosave of the open
// card project before the process exits.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "cardstudio/internal/log"
	"cardstudio/internal/storage"
	"cardstudio/internal/telemetry"
	"cardstudio/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Snapshot returns the serialized project to autosave, or nil when nothing
// is open.
type Snapshot func() ([]byte, error)

// Recover captures a panic, logs it with the stacktrace, writes a report into
// dir (the temp dir when empty) and autosaves the snapshot next to it.
//
// Usage: defer crash.Recover(dir, ed.ExportJSON)
func Recover(dir string, snap Snapshot) {
	if r := recover(); r != nil {
		handle(dir, snap, r, debug.Stack())
	}
}

func handle(dir string, snap Snapshot, r any, stack []byte) {
	l := applog.WithComponent("crash")
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	if dir == "" {
		dir = os.TempDir()
	}
	reportPath, err := writeReport(dir, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if snap != nil {
		autosave(l, dir, snap)
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func autosave(l *slog.Logger, dir string, snap Snapshot) {
	// the snapshot itself may panic if state is corrupt
	defer func() {
		if r := recover(); r != nil {
			l.Error("autosave snapshot panicked", slog.Any("panic", r))
		}
	}()
	data, err := snap()
	if err != nil {
		l.Error("autosave snapshot failed", slog.Any("err", err))
		return
	}
	if len(data) == 0 {
		return
	}
	path, err := storage.AutosaveCrash(dir, data)
	if err != nil {
		l.Error("autosave crash snapshot failed", slog.Any("err", err))
		return
	}
	l.Info("autosave crash snapshot written", slog.String("path", path))
}

func writeReport(dir string, panicVal any, stack []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "CardStudio Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}

	// opt-in only; a no-op otherwise
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
