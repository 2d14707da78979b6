/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cardstudio/internal/config"
)

type sink struct {
	mu      sync.Mutex
	events  [][]byte
	crashes [][]byte
}

func (s *sink) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		switch r.URL.Path {
		case "/events":
			s.events = append(s.events, b)
		case "/crash":
			s.crashes = append(s.crashes, b)
		}
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (s *sink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), len(s.crashes)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestClient_SendsEventsAndCrashes(t *testing.T) {
	var s sink
	srv := s.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: time.Second})
	defer c.Close()

	if !c.Enabled() {
		t.Fatalf("client should be enabled")
	}
	c.Event("export", map[string]any{"format": "pdf", "pages": 2})
	waitFor(t, func() bool { n, _ := s.counts(); return n == 1 })

	var m map[string]any
	s.mu.Lock()
	err := json.Unmarshal(s.events[0], &m)
	s.mu.Unlock()
	if err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["name"] != "export" {
		t.Fatalf("event name mismatch: %v", m["name"])
	}
	if _, ok := m["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}
	props, _ := m["props"].(map[string]any)
	if props["format"] != "pdf" {
		t.Fatalf("props not forwarded: %v", m["props"])
	}

	c.UploadCrash([]byte("STACKTRACE"))
	waitFor(t, func() bool { _, n := s.counts(); return n == 1 })
}

func TestClient_DisabledDropsEverything(t *testing.T) {
	var s sink
	srv := s.server(t)
	c := New(Config{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash"})
	defer c.Close()

	if c.Enabled() {
		t.Fatalf("client must be disabled without opt-in")
	}
	c.Event("started", nil)
	c.UploadCrash([]byte("x"))
	c.Flush(nil)
	time.Sleep(50 * time.Millisecond)
	if e, cr := s.counts(); e != 0 || cr != 0 {
		t.Fatalf("expected nothing sent, got events=%d crashes=%d", e, cr)
	}
}

func TestClient_OptInWithoutURLIsDisabled(t *testing.T) {
	c := New(Config{OptIn: true})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("enabled without events URL")
	}
	// must not panic or block
	c.Event("started", nil)
	c.UploadCrash([]byte("x"))
}

func TestClient_UnreachableEndpointIsSilent(t *testing.T) {
	c := New(Config{OptIn: true, EventsURL: "http://127.0.0.1:1/events", Timeout: 50 * time.Millisecond, DebugLogging: true})
	c.Event("started", nil)
	c.Flush(nil)
	c.Close()
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Fatalf("nil client enabled")
	}
	c.UploadCrash([]byte("x"))
}

func TestFromEnv(t *testing.T) {
	t.Setenv(config.EnvTelemetryOptIn, "yes")
	t.Setenv(config.EnvTelemetryURL, " http://127.0.0.1:0 ")
	t.Setenv(config.EnvCrashUploadURL, "")
	t.Setenv("CS_TELEMETRY_TIMEOUT_MS", "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://127.0.0.1:0" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}

	NewDefault(cfg)
	if !Enabled() {
		t.Fatalf("default Enabled should be true with env config")
	}
	NewDefault(Config{})
	if Enabled() {
		t.Fatalf("default should be disabled after reset")
	}
}

func TestFromConfig_DefaultTimeout(t *testing.T) {
	t.Setenv("CS_TELEMETRY_TIMEOUT_MS", "")
	cfg := FromConfig(config.TelemetryConfig{OptIn: true, EventsURL: "http://x"})
	if cfg.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if !cfg.OptIn || cfg.EventsURL != "http://x" {
		t.Fatalf("fields not mapped: %+v", cfg)
	}
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"1": true, "TRUE": true, " on ": true, "no": false, "": false, "0": false} {
		if got := parseBool(in); got != want {
			t.Fatalf("parseBool(%q) = %v", in, got)
		}
	}
}
