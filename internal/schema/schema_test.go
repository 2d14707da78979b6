/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"cardstudio/internal/domain"
)

func validProject(t *testing.T) []byte {
	t.Helper()
	pg := domain.NewPage("p1", "Front", 800, 1120, "#ffffff")
	obj := domain.NewShape("s1", "circle", 100, 100)
	obj.Width = domain.Float(120)
	pg.Objects = []domain.Object{obj, domain.NewGroup("g1", "Group", []domain.Object{domain.NewText("t1", "hi", 5, 5)})}
	p := domain.NewProject("proj", "Card", pg, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestValidProjectPasses(t *testing.T) {
	if err := Validate(validProject(t)); err != nil {
		t.Fatalf("expected valid project, got %v", err)
	}
}

func TestMissingFieldsRejected(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"id":`,
		"no pages":       `{"id":"x","name":"n","pages":[],"selectedPageId":"p","selectedObjectId":null,"metadata":{"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z","version":"1.0.0"}}`,
		"array root":     `[]`,
		"missing left":   `{"id":"x","name":"n","pages":[{"id":"p","name":"P","backgroundColor":"#fff","width":10,"height":10,"objects":[{"id":"o","type":"text","top":1}]}],"selectedPageId":"p","selectedObjectId":null,"metadata":{"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z","version":"1.0.0"}}`,
		"bad type":       `{"id":"x","name":"n","pages":[{"id":"p","name":"P","backgroundColor":"#fff","width":10,"height":10,"objects":[{"id":"o","type":"video","left":0,"top":1}]}],"selectedPageId":"p","selectedObjectId":null,"metadata":{"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z","version":"1.0.0"}}`,
		"zero width":     `{"id":"x","name":"n","pages":[{"id":"p","name":"P","backgroundColor":"#fff","width":0,"height":10,"objects":[]}],"selectedPageId":"p","selectedObjectId":null,"metadata":{"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z","version":"1.0.0"}}`,
		"bad timestamp":  `{"id":"x","name":"n","pages":[{"id":"p","name":"P","backgroundColor":"#fff","width":1,"height":10,"objects":[]}],"selectedPageId":"p","selectedObjectId":null,"metadata":{"createdAt":"yesterday","updatedAt":"2025-01-01T00:00:00Z","version":"1.0.0"}}`,
		"nested invalid": `{"id":"x","name":"n","pages":[{"id":"p","name":"P","backgroundColor":"#fff","width":1,"height":10,"objects":[{"id":"g","type":"group","left":0,"top":0,"isGroup":true,"children":[{"id":"c","type":"shape"}]}]}],"selectedPageId":"p","selectedObjectId":null,"metadata":{"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z","version":"1.0.0"}}`,
	}
	for name, doc := range cases {
		err := Validate([]byte(doc))
		if err == nil {
			t.Fatalf("%s: expected format error", name)
		}
		if !errors.Is(err, ErrFormat) {
			t.Fatalf("%s: error %v does not match ErrFormat", name, err)
		}
	}
}

func TestFormatErrorListsProblems(t *testing.T) {
	err := Validate([]byte(`{"name":"n"}`))
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %T", err)
	}
	if len(fe.Problems) == 0 || !strings.Contains(err.Error(), "id") {
		t.Fatalf("expected problems naming the missing id, got %v", err)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
	base := errors.New("duplicate page id")
	err := Wrap(base)
	if !errors.Is(err, ErrFormat) || !errors.Is(err, base) {
		t.Fatalf("wrapped error should match both ErrFormat and its cause: %v", err)
	}
	if Wrap(err) != err {
		t.Fatalf("wrapping a FormatError twice should be a no-op")
	}
}
