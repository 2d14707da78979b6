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
	"os"
	"testing"
	"time"
)

// openPGForTest connects to CS_PG_DSN or skips.
func openPGForTest(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("CS_PG_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("CS_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() {
		_, _ = p.db.Exec(`DELETE FROM kv WHERE key LIKE 'editor-project-%' OR key = 'other'`)
		_, _ = p.db.Exec(`DELETE FROM checkpoints WHERE project_id = 'pg-test'`)
		_ = p.Close()
	})
	return p
}

func TestPostgresKV(t *testing.T) {
	p := openPGForTest(t)
	exerciseKV(t, p)
}

func TestPostgresCheckpoints(t *testing.T) {
	p := openPGForTest(t)
	ctx := context.Background()
	for i := 0; i < DefaultKeepCheckpoints+3; i++ {
		if err := p.SaveCheckpoint(ctx, "pg-test", "save", []byte(`{}`)); err != nil {
			t.Fatalf("SaveCheckpoint: %v", err)
		}
	}
	list, err := p.ListCheckpoints(ctx, "pg-test", 100)
	if err != nil || len(list) != DefaultKeepCheckpoints {
		t.Fatalf("expected %d checkpoints, got %d err %v", DefaultKeepCheckpoints, len(list), err)
	}
}

func TestS3KV(t *testing.T) {
	bucket := os.Getenv("CS_S3_TEST_BUCKET")
	if bucket == "" {
		t.Skip("CS_S3_TEST_BUCKET not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s, err := OpenS3(ctx, S3Options{
		Bucket:   bucket,
		Region:   os.Getenv("CS_S3_REGION"),
		Endpoint: os.Getenv("CS_S3_ENDPOINT"),
		Prefix:   "cardstudio-test-" + time.Now().UTC().Format("20060102150405"),
	})
	if err != nil {
		t.Fatalf("OpenS3: %v", err)
	}
	exerciseKV(t, s)
}

func TestParseMigrationVersion(t *testing.T) {
	v, err := parseMigrationVersion("0002_checkpoints.sql")
	if err != nil || v != 2 {
		t.Fatalf("parseMigrationVersion = %d, %v", v, err)
	}
	if _, err := parseMigrationVersion("init.sql"); err == nil {
		t.Fatalf("expected error for unnumbered migration")
	}
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil || len(entries) < 2 {
		t.Fatalf("embedded migrations missing: %v", err)
	}
}
