/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type memSecrets map[string]string

func (m memSecrets) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (m memSecrets) Set(service, key, value string) error { m[service+"/"+key] = value; return nil }
func (m memSecrets) Delete(service, key string) error     { delete(m, service+"/"+key); return nil }

func stubSecrets(t *testing.T) memSecrets {
	t.Helper()
	old := secretStore
	m := memSecrets{}
	secretStore = m
	t.Cleanup(func() { secretStore = old })
	return m
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Editor.HistoryLimit != 50 {
		t.Fatalf("default history limit = %d, want 50", d.Editor.HistoryLimit)
	}
	if d.Editor.PageWidth <= 0 || d.Editor.PageHeight <= 0 {
		t.Fatalf("default page size must be positive: %+v", d.Editor)
	}
	if d.Storage.Type != "filesystem" {
		t.Fatalf("default storage type = %q", d.Storage.Type)
	}
}

func TestEnvOverridesStorage(t *testing.T) {
	stubSecrets(t)
	t.Setenv(EnvStorageType, "SQLite")
	t.Setenv(EnvStoragePath, "/tmp/cs.sqlite")
	cfg, _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.Path != "/tmp/cs.sqlite" {
		t.Fatalf("storage overrides not applied: %+v", cfg.Storage)
	}
	if env, ok := EnvOverrideFor("storage.type"); !ok || env != EnvStorageType {
		t.Fatalf("EnvOverrideFor(storage.type) = %q, %v", env, ok)
	}
}

func TestEnvOverridesHistoryLimitIgnoresGarbage(t *testing.T) {
	stubSecrets(t)
	t.Setenv(EnvHistoryLimit, "abc")
	cfg, _, _ := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Editor.HistoryLimit != 50 {
		t.Fatalf("garbage env should keep default, got %d", cfg.Editor.HistoryLimit)
	}
	t.Setenv(EnvHistoryLimit, "120")
	cfg, _, _ = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Editor.HistoryLimit != 120 {
		t.Fatalf("history limit override = %d, want 120", cfg.Editor.HistoryLimit)
	}
}

func TestMergeIncludesClipboardAndLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Clipboard.System = true
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/var/log/cs.log"
	mergeInto(&dst, &src)
	if !dst.Clipboard.System {
		t.Fatalf("clipboard.system was not merged from file config")
	}
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/var/log/cs.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	secrets := stubSecrets(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Editor.HistoryLimit = 75
	cfg.Storage.Type = "s3"
	cfg.Storage.Bucket = "cards"
	if err := SaveTo(path, cfg, "s3cr3t"); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if secrets[keyringService+"/"+keyringS3Key] != "s3cr3t" {
		t.Fatalf("secret not stored in keyring stub")
	}
	got, secret, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Editor.HistoryLimit != 75 || got.Storage.Bucket != "cards" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if secret != "s3cr3t" {
		t.Fatalf("secret = %q, want from keyring", secret)
	}
}

func TestSecretFromEnvWins(t *testing.T) {
	secrets := stubSecrets(t)
	secrets[keyringService+"/"+keyringS3Key] = "from-keyring"
	t.Setenv(EnvStorageType, "s3")
	t.Setenv(EnvS3SecretKey, "from-env")
	_, secret, _ := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if secret != "from-env" {
		t.Fatalf("secret = %q, want from-env", secret)
	}
}
