/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "cardstudio/internal/log"
)

const (
	BackupsDirName = "backups"
	fileExt        = ".json"
	// keepBackups bounds the timestamped backups kept per key.
	keepBackups = 10
)

// Filesystem stores each key as <root>/<key>.json. Writes go to a temp file that is
// renamed over the target, after the previous version was copied into backups/.
// Reads of a missing or corrupt file fall back to the latest backup.
type Filesystem struct {
	root string
	log  *slog.Logger
}

// NewFilesystem creates root and its backups directory if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage root path is required")
	}
	if err := os.MkdirAll(filepath.Join(root, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Filesystem{root: root, log: applog.WithComponent("storage").With(slog.String("backend", "filesystem"))}, nil
}

// Root returns the storage directory.
func (f *Filesystem) Root() string { return f.root }

func (f *Filesystem) path(key string) string { return filepath.Join(f.root, key+fileExt) }

func (f *Filesystem) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path(key))
	if err == nil && json.Valid(b) {
		return b, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.log.Warn("read failed, trying backup", slog.String("key", key), slog.Any("err", err))
	} else if err == nil {
		f.log.Warn("corrupt file, trying backup", slog.String("key", key))
	}
	bak, berr := f.latestBackup(key)
	if berr == nil {
		return bak, nil
	}
	if errors.Is(err, fs.ErrNotExist) && errors.Is(berr, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err == nil {
		err = errors.New("invalid JSON")
	}
	return nil, fmt.Errorf("read %s: %w; backup attempt: %v", key, err, berr)
}

// Put writes data transactionally and keeps a timestamped backup of the
// previous version.
func (f *Filesystem) Put(_ context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	target := f.path(key)
	bdir := filepath.Join(f.root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(target); statErr == nil {
		stamp := time.Now().UTC().Format("20060102-150405.000000000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s%s.%s.bak", key, fileExt, stamp))
		if cerr := copyFile(target, bpath); cerr != nil {
			return fmt.Errorf("backup current %s: %w", key, cerr)
		}
		f.pruneBackups(key)
	}

	temp := filepath.Join(f.root, fmt.Sprintf(".%s.tmp-%d-%d", key, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp file: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(target); err == nil {
		_ = os.Remove(target)
	}
	if rerr := os.Rename(temp, target); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", key, rerr)
	}
	return nil
}

// Delete removes the key. Backups are kept.
func (f *Filesystem) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (f *Filesystem) List(_ context.Context, prefix string) ([]string, error) {
	ents, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("list storage root: %w", err)
	}
	var keys []string
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key := strings.TrimSuffix(name, fileExt)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *Filesystem) Close() error { return nil }

// Backups returns backup file paths for key, oldest first.
func (f *Filesystem) Backups(key string) ([]string, error) {
	bdir := filepath.Join(f.root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, key+fileExt+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func (f *Filesystem) latestBackup(key string) ([]byte, error) {
	candidates, err := f.Backups(key)
	if err != nil {
		return nil, err
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err == nil && json.Valid(b) {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (f *Filesystem) pruneBackups(key string) {
	candidates, err := f.Backups(key)
	if err != nil || len(candidates) <= keepBackups {
		return
	}
	for _, p := range candidates[:len(candidates)-keepBackups] {
		_ = os.Remove(p)
	}
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
