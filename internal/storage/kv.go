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
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned by Get when a key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// ProjectKeyPrefix prefixes every saved project key.
const ProjectKeyPrefix = "editor-project-"

// KV is the host-provided persistence facility.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// List returns keys starting with prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Backend is a KV that holds resources until closed.
type Backend interface {
	KV
	Close() error
}

// ProjectKey returns the storage key for a project id.
func ProjectKey(projectID string) string { return ProjectKeyPrefix + projectID }

// ProjectIDFromKey reverses ProjectKey.
func ProjectIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, ProjectKeyPrefix) || len(key) == len(ProjectKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, ProjectKeyPrefix), true
}

// ListProjects returns the ids of all saved projects.
func ListProjects(ctx context.Context, kv KV) ([]string, error) {
	keys, err := kv.List(ctx, ProjectKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id, ok := ProjectIDFromKey(k); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// validateKey rejects keys that could escape a directory or bucket prefix.
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return fmt.Errorf("invalid key %q", key)
	}
	if path.Base(key) != key || strings.ContainsAny(key, `\/`) {
		return fmt.Errorf("invalid key %q: must not be a path", key)
	}
	return nil
}
