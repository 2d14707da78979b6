/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package guides

import (
	"testing"

	"cardstudio/internal/domain"
)

func hasLine(lines []Line, orientation string, pos float64) bool {
	for _, l := range lines {
		if l.Orientation == orientation && l.Position == pos {
			return true
		}
	}
	return false
}

func TestCompute_SnapToPageEdges(t *testing.T) {
	page := Rect{W: 200, H: 100}
	got, lines := Compute(Rect{X: 3, Y: 4, W: 80, H: 40}, []Anchor{{Rect: page, Weight: 1}}, Options{Threshold: 6, Edges: true})
	if got.X != 0 || got.Y != 0 {
		t.Fatalf("expected snap to 0,0, got %v,%v", got.X, got.Y)
	}
	if !hasLine(lines, "vertical", 0) || !hasLine(lines, "horizontal", 0) {
		t.Fatalf("expected guides at x=0 and y=0, got %+v", lines)
	}
}

func TestCompute_SnapToCenters(t *testing.T) {
	page := Rect{W: 200, H: 100}
	got, lines := Compute(Rect{X: 48, Y: 17, W: 100, H: 60}, []Anchor{{Rect: page, Weight: 1}}, Options{Threshold: 5, Centers: true})
	if got.X != 50 || got.Y != 20 {
		t.Fatalf("expected centered box at 50,20, got %v,%v", got.X, got.Y)
	}
	for _, l := range lines {
		if l.Kind != "center" {
			t.Fatalf("unexpected guide kind %q", l.Kind)
		}
	}
}

func TestCompute_OutsideThreshold(t *testing.T) {
	moving := Rect{X: 20, Y: 30, W: 10, H: 10}
	got, lines := Compute(moving, []Anchor{{Rect: Rect{W: 200, H: 200}, Weight: 1}}, Options{Threshold: 4, Edges: true, Centers: true})
	if got != moving || len(lines) != 0 {
		t.Fatalf("nothing should snap, got %+v %+v", got, lines)
	}
}

func TestCompute_AbutsNeighbour(t *testing.T) {
	other := Rect{X: 100, Y: 0, W: 50, H: 50}
	got, _ := Compute(Rect{X: 47, Y: 200, W: 50, H: 50}, []Anchor{{Rect: other, Weight: 1}}, Options{Edges: true})
	if got.X != 50 {
		t.Fatalf("right edge should abut the neighbour's left edge, got x=%v", got.X)
	}
	if got.Y != 200 {
		t.Fatalf("y must stay, got %v", got.Y)
	}
}

func TestCompute_WeightBreaksTies(t *testing.T) {
	light := Anchor{Rect: Rect{X: 10, Y: 0, W: 10, H: 10}, Weight: 1}
	heavy := Anchor{Rect: Rect{X: 14, Y: 0, W: 10, H: 10}, Weight: 4}
	got, _ := Compute(Rect{X: 12, Y: 100, W: 10, H: 10}, []Anchor{light, heavy}, Options{Threshold: 3, Edges: true})
	if got.X != 14 {
		t.Fatalf("heavier anchor should win, got x=%v", got.X)
	}
}

func TestSnapObjectSkipsSelfAndHidden(t *testing.T) {
	a := domain.NewShape("a", "rectangle", 0, 0)
	a.Width, a.Height = domain.Float(100), domain.Float(50)
	hidden := domain.NewShape("h", "rectangle", 300, 300)
	hidden.Width, hidden.Height = domain.Float(10), domain.Float(10)
	hidden.Hidden = true
	pg := domain.Page{ID: "p", Width: 800, Height: 600, Objects: []domain.Object{a, hidden}}

	anchors := PageAnchors(pg, "a")
	if len(anchors) != 1 {
		t.Fatalf("expected only the page anchor, got %d", len(anchors))
	}

	left, top, lines := SnapObject(pg, a, 697, 548, Options{Edges: true})
	if left != 700 || top != 550 {
		t.Fatalf("expected snap to bottom-right corner, got %v,%v", left, top)
	}
	if len(lines) != 2 {
		t.Fatalf("expected two guides, got %+v", lines)
	}
}
