/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package guides computes snapping for an object being moved on a page: its
// edges and center are pulled onto the page bounds and the other objects.
package guides

import (
	"math"

	"cardstudio/internal/domain"
	"cardstudio/internal/export"
)

// DefaultThreshold is the snap distance in page units.
const DefaultThreshold = 6

type Rect struct{ X, Y, W, H float64 }

type Pt struct{ X, Y float64 }

// Options controls which features snap and how far away they may be.
type Options struct {
	Threshold float64
	Edges     bool
	Centers   bool
}

// Anchor is a static reference box. Higher weights win ties.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// Line is a guide to draw after a snap. Orientation is "vertical" or
// "horizontal"; Kind is "edge" or "center".
type Line struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

type candidate struct {
	delta float64
	dist  float64
	line  Line
}

func (c *candidate) consider(delta, threshold, weight float64, l Line) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	if dist/math.Max(1, weight) < c.dist {
		c.delta, c.dist, c.line = delta, dist, l
	}
}

// Compute snaps moving against anchors independently on each axis and
// returns the adjusted box plus the guides that caused the adjustment.
func Compute(moving Rect, anchors []Anchor, opt Options) (Rect, []Line) {
	if opt.Threshold <= 0 {
		opt.Threshold = DefaultThreshold
	}
	bx := candidate{dist: math.Inf(1)}
	by := candidate{dist: math.Inf(1)}

	mL, mR, mT, mB := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H
	mCX, mCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		r := a.Rect
		aL, aR, aT, aB := r.X, r.X+r.W, r.Y, r.Y+r.H
		aCX, aCY := r.X+r.W/2, r.Y+r.H/2
		if opt.Edges {
			for _, p := range [][2]float64{{mL, aL}, {mR, aR}, {mL, aR}, {mR, aL}} {
				bx.consider(p[0]-p[1], opt.Threshold, a.Weight, vertical(p[1], moving, r, "edge"))
			}
			for _, p := range [][2]float64{{mT, aT}, {mB, aB}, {mT, aB}, {mB, aT}} {
				by.consider(p[0]-p[1], opt.Threshold, a.Weight, horizontal(p[1], moving, r, "edge"))
			}
		}
		if opt.Centers {
			bx.consider(mCX-aCX, opt.Threshold, a.Weight, vertical(aCX, moving, r, "center"))
			by.consider(mCY-aCY, opt.Threshold, a.Weight, horizontal(aCY, moving, r, "center"))
		}
	}

	snapped := moving
	var lines []Line
	if !math.IsInf(bx.dist, 1) {
		snapped.X = round3(moving.X - bx.delta)
		lines = append(lines, bx.line)
	}
	if !math.IsInf(by.dist, 1) {
		snapped.Y = round3(moving.Y - by.delta)
		lines = append(lines, by.line)
	}
	return snapped, lines
}

func vertical(x float64, a, b Rect, kind string) Line {
	x = round3(x)
	return Line{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, math.Min(a.Y, b.Y)},
		To:          Pt{x, math.Max(a.Y+a.H, b.Y+b.H)},
	}
}

func horizontal(y float64, a, b Rect, kind string) Line {
	y = round3(y)
	return Line{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{math.Min(a.X, b.X), y},
		To:          Pt{math.Max(a.X+a.W, b.X+b.W), y},
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// PageAnchors returns the page box (weight 2) followed by every visible
// top-level object except skipID.
func PageAnchors(pg domain.Page, skipID string) []Anchor {
	out := []Anchor{{Rect: Rect{W: float64(pg.Width), H: float64(pg.Height)}, Weight: 2}}
	for _, o := range pg.Objects {
		if o.ID == skipID || o.Hidden {
			continue
		}
		x, y, w, h := export.Bounds(o)
		out = append(out, Anchor{Rect: Rect{x, y, w, h}, Weight: 1})
	}
	return out
}

// SnapObject moves the box of o to (left, top) and snaps it on pg.
func SnapObject(pg domain.Page, o domain.Object, left, top float64, opt Options) (float64, float64, []Line) {
	_, _, w, h := export.Bounds(o)
	r, lines := Compute(Rect{X: left, Y: top, W: w, H: h}, PageAnchors(pg, o.ID), opt)
	return r.X, r.Y, lines
}
