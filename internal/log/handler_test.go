/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerLine(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.NewRecord(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("who", "a b"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}

	want := `2025-01-02T03:04:05Z ERR boom k=v grp.n=42 grp.pi=3.14 grp.who="a b"` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("line mismatch\n got %q\nwant %q", got, want)
	}
}

func TestConsoleHandlerGroupsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newConsoleHandler(&buf, slog.LevelDebug, true))
	l.Debug("save", slog.Group("page", slog.Int("index", 2)), slog.Any("err", errors.New("disk full")), slog.Attr{})

	out := buf.String()
	for _, frag := range []string{" DBG save ", "page.index=2", `err="disk full"`, " src=handler_test.go:"} {
		if !strings.Contains(out, frag) {
			t.Fatalf("missing %q in %q", frag, out)
		}
	}
	if strings.Contains(out, " =") {
		t.Fatalf("empty attr should be dropped: %q", out)
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestFanoutDeliversToEverySink(t *testing.T) {
	var a, b bytes.Buffer
	f := fanout{
		newConsoleHandler(&a, slog.LevelInfo, false),
		newConsoleHandler(&b, slog.LevelError, false),
	}
	l := slog.New(f).With(slog.String("c", "x"))
	l.Info("one")
	l.Error("two")

	if strings.Count(a.String(), "\n") != 2 || strings.Count(b.String(), "\n") != 1 {
		t.Fatalf("per-sink levels not honored: %q / %q", a.String(), b.String())
	}
	if !strings.Contains(b.String(), "ERR two c=x") {
		t.Fatalf("bound attrs not forwarded: %q", b.String())
	}

	bad := fanout{failingHandler{slog.DiscardHandler}, newConsoleHandler(&a, slog.LevelInfo, false)}
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "three", 0)
	if err := bad.Handle(context.Background(), r); err == nil || !strings.Contains(a.String(), "three") {
		t.Fatalf("error should be reported after delivering to healthy sinks: %v", err)
	}
}
