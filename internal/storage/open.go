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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cardstudio/internal/config"
	applog "cardstudio/internal/log"
)

// Open returns the backend selected by cfg.Type. secret is the S3 secret access
// key resolved by the config layer; it is ignored by other backends.
func Open(ctx context.Context, cfg config.StorageConfig, secret string) (Backend, error) {
	l := applog.WithComponent("storage")
	var (
		b   Backend
		err error
	)
	switch cfg.Type {
	case "memory":
		b = NewMemory()
	case "", "filesystem":
		b, err = NewFilesystem(cfg.Path)
	case "sqlite":
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "cardstudio.sqlite")
		}
		b, err = OpenSQLite(path)
	case "postgres":
		b, err = OpenPostgres(ctx, cfg.DSN)
	case "s3":
		b, err = OpenS3(ctx, S3Options{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			Prefix:          cfg.Path,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: secret,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
	if err != nil {
		l.Error("open storage failed", slog.String("type", cfg.Type), slog.Any("err", err))
		return nil, err
	}
	l.Debug("storage ready", slog.String("type", cfg.Type))
	return b, nil
}

// AutosaveCrash writes data to dir/crash-<stamp>.json and returns the path.
// It is used by the panic handler and never touches the configured backend.
func AutosaveCrash(dir string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}
	name := fmt.Sprintf("crash-%s.json", time.Now().UTC().Format("20060102-150405.000"))
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := writeFileSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write crash autosave: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize crash autosave: %w", err)
	}
	return path, nil
}
