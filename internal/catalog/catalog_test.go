/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"sort"
	"testing"
)

func TestShapeDefaultsKnownAndUnknown(t *testing.T) {
	s, ok := ShapeDefaults("circle")
	if !ok {
		t.Fatalf("circle should be in the catalog")
	}
	if s.Fill == "" || s.Width != s.Height {
		t.Fatalf("unexpected circle defaults: %+v", s)
	}
	if _, ok := ShapeDefaults("blob"); ok {
		t.Fatalf("unknown shape should not resolve")
	}
	if rr, _ := ShapeDefaults("rounded-rectangle"); rr.CornerRadius <= 0 {
		t.Fatalf("rounded-rectangle needs a corner radius")
	}
}

func TestIconDefaultsFallback(t *testing.T) {
	if got := IconDefaults("no-such-icon"); got != defaultIcon {
		t.Fatalf("fallback mismatch: %+v", got)
	}
	if got := IconDefaults("ring"); got.Fill != "#d4af37" {
		t.Fatalf("ring fill = %q", got.Fill)
	}
}

func TestShapeTypesSorted(t *testing.T) {
	types := ShapeTypes()
	if len(types) != len(shapes) {
		t.Fatalf("got %d types, want %d", len(types), len(shapes))
	}
	if !sort.StringsAreSorted(types) {
		t.Fatalf("shape types not sorted: %v", types)
	}
	if !sort.StringsAreSorted(IconNames()) {
		t.Fatalf("icon names not sorted")
	}
}
