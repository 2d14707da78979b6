/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures the process-wide slog logger for cardstudio.
// Records go to a console handler and optionally to a rotated JSON file; the
// project id carried on a context is attached to every record logged with it.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"cardstudio/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "CS_LOG_LEVEL"  // debug, info, warn or error
	EnvFormat = "CS_LOG_FORMAT" // console or json
	EnvFile   = "CS_LOG_FILE"   // rotated JSON log file
	EnvSource = "CS_LOG_SOURCE" // include caller position
)

// Options controls logger initialization. The zero value logs INFO and above
// to stderr in console format.
type Options struct {
	Level     string
	Format    string
	AddSource bool
	File      string
	// Writer replaces stderr for the console output.
	Writer io.Writer
}

// Rotation limits for the file sink.
const (
	fileMaxMB      = 10
	fileMaxBackups = 3
	fileMaxDays    = 28
)

var current atomic.Pointer[slog.Logger]

// L returns the application logger, configuring it from the environment on
// first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return current.Load()
}

// Init replaces the application logger and slog's default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	sinks := []slog.Handler{newSink(opts.Format, out, lvl, opts.AddSource)}
	if path := strings.TrimSpace(opts.File); path != "" {
		rot := &lj.Logger{Filename: path, MaxSize: fileMaxMB, MaxBackups: fileMaxBackups, MaxAge: fileMaxDays, Compress: true}
		sinks = append(sinks, newSink("json", rot, lvl, opts.AddSource))
	}

	var h slog.Handler = fanout(sinks)
	if len(sinks) == 1 {
		h = sinks[0]
	}
	l := slog.New(projectHandler{h}).With(
		slog.String("app", "cardstudio"),
		slog.String("ver", version.Version),
		slog.Time("ts_init", time.Now()),
	)
	current.Store(l)
	slog.SetDefault(l)
}

func newSink(format string, w io.Writer, lvl slog.Level, src bool) slog.Handler {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: src})
	}
	return newConsoleHandler(w, lvl, src)
}

// FromEnv reads Options from the CS_LOG_* variables.
func FromEnv() Options {
	opts := Options{
		Level:  envOr(EnvLevel, "info"),
		Format: envOr(EnvFormat, "console"),
		File:   os.Getenv(EnvFile),
	}
	opts.AddSource, _ = strconv.ParseBool(os.Getenv(EnvSource))
	return opts
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// parseLevel accepts slog's level names (with optional offsets such as
// "debug+2") and "warning". Anything else is INFO.
func parseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// WithComponent returns a logger with component=<name>.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation returns l with op=<op>.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// Discard returns a logger that drops everything.
func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

type projectKey struct{}

// ContextWithProject returns a context whose log records carry project=<id>.
func ContextWithProject(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, projectKey{}, projectID)
}

// ProjectFromContext returns the project id stored by ContextWithProject.
func ProjectFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(projectKey{}).(string)
	return id, ok && id != ""
}
