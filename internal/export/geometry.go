/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"math"
	"strings"

	"cardstudio/internal/domain"
)

type outlineKind int

const (
	outlineRect outlineKind = iota
	outlineEllipse
	outlinePolygon
	outlineLine
)

type pt struct{ X, Y float64 }

// outline is a shape in box-local coordinates: (0,0) is the top-left corner of
// a w×h box.
type outline struct {
	kind   outlineKind
	w, h   float64
	radius float64
	points []pt
}

func shapeOutline(shapeType string, w, h, radius float64) outline {
	o := outline{kind: outlinePolygon, w: w, h: h}
	switch shapeType {
	case "circle", "ellipse":
		o.kind = outlineEllipse
	case "line":
		o.kind = outlineLine
	case "triangle":
		o.points = []pt{{w / 2, 0}, {w, h}, {0, h}}
	case "diamond":
		o.points = []pt{{w / 2, 0}, {w, h / 2}, {w / 2, h}, {0, h / 2}}
	case "hexagon":
		o.points = []pt{{w / 4, 0}, {3 * w / 4, 0}, {w, h / 2}, {3 * w / 4, h}, {w / 4, h}, {0, h / 2}}
	case "star":
		o.points = starPoints(w, h, 5, 0.4)
	case "heart":
		o.points = heartPoints(w, h, 48)
	default:
		o.kind = outlineRect
		o.radius = math.Max(0, math.Min(radius, math.Min(w, h)/2))
	}
	return o
}

func starPoints(w, h float64, spikes int, inner float64) []pt {
	out := make([]pt, 0, spikes*2)
	for i := 0; i < spikes*2; i++ {
		r := 1.0
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/float64(spikes)
		out = append(out, pt{w/2 + r*w/2*math.Cos(a), h/2 + r*h/2*math.Sin(a)})
	}
	return out
}

// heartPoints samples the classic parametric heart curve into the box.
func heartPoints(w, h float64, n int) []pt {
	out := make([]pt, 0, n)
	for i := 0; i < n; i++ {
		t := 2 * math.Pi * float64(i) / float64(n)
		x := 16 * math.Pow(math.Sin(t), 3)
		y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
		// x in [-16,16], y in [-17,12]; flip y so the point is at the bottom
		out = append(out, pt{(x + 16) / 32 * w, (12 - y) / 29 * h})
	}
	return out
}

// contains reports whether the box-local point lies inside the outline.
func (o outline) contains(x, y float64) bool {
	if x < 0 || y < 0 || x > o.w || y > o.h {
		return false
	}
	switch o.kind {
	case outlineEllipse:
		rx, ry := o.w/2, o.h/2
		if rx <= 0 || ry <= 0 {
			return false
		}
		dx, dy := (x-rx)/rx, (y-ry)/ry
		return dx*dx+dy*dy <= 1
	case outlinePolygon:
		return pointInPolygon(o.points, x, y)
	case outlineRect, outlineLine:
		r := o.radius
		if r <= 0 {
			return true
		}
		cx := math.Min(math.Max(x, r), o.w-r)
		cy := math.Min(math.Max(y, r), o.h-r)
		dx, dy := x-cx, y-cy
		return dx*dx+dy*dy <= r*r
	}
	return false
}

func pointInPolygon(poly []pt, x, y float64) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// objectSize returns the drawn width and height including scale.
// Bounds returns the unrotated box an object occupies on its page.
func Bounds(o domain.Object) (left, top, w, h float64) {
	w, h = objectSize(o)
	return o.Left, o.Top, w, h
}

func objectSize(o domain.Object) (float64, float64) {
	w, h := 100.0, 100.0
	switch o.Kind {
	case domain.KindText:
		size := fontSize(o)
		lines := strings.Split(o.Text.Text, "\n")
		longest := 0
		for _, l := range lines {
			if n := len([]rune(l)); n > longest {
				longest = n
			}
		}
		lh := 1.16
		if o.Text.LineHeight != nil && *o.Text.LineHeight > 0 {
			lh = *o.Text.LineHeight
		}
		w, h = float64(longest)*size*0.6, float64(len(lines))*size*lh
	case domain.KindImage:
		w, h = 300, 200
	case domain.KindIcon:
		w, h = 48, 48
	}
	if o.Width != nil {
		w = *o.Width
	}
	if o.Height != nil {
		h = *o.Height
	}
	if o.ScaleX != nil {
		w *= *o.ScaleX
	}
	if o.ScaleY != nil {
		h *= *o.ScaleY
	}
	return math.Max(w, 0), math.Max(h, 0)
}

func fontSize(o domain.Object) float64 {
	if o.Text != nil && o.Text.FontSize != nil && *o.Text.FontSize > 0 {
		return *o.Text.FontSize
	}
	return 16
}

func strokeWidth(o domain.Object) float64 {
	if o.StrokeWidth != nil && *o.StrokeWidth > 0 {
		return *o.StrokeWidth
	}
	if o.Stroke != "" {
		return 1
	}
	return 0
}

// fillOf resolves the paint of an object, falling back to the first gradient stop.
func fillOf(o domain.Object) string {
	if o.Fill != "" {
		return o.Fill
	}
	if o.Gradient != nil && len(o.Gradient.ColorStops) > 0 {
		return o.Gradient.ColorStops[0].Color
	}
	if o.Kind == domain.KindText || o.Kind == domain.KindShape {
		return "#000000"
	}
	return ""
}

func shapeType(o domain.Object) string {
	if o.Shape == nil {
		return "rectangle"
	}
	return o.Shape.ShapeType
}

func cornerRadius(o domain.Object) float64 {
	if o.Shape == nil || o.Shape.CornerRadius == nil {
		return 0
	}
	return *o.Shape.CornerRadius
}

// pagesByID returns the pages named by ids in that order, or all pages when ids is empty.
func pagesByID(p domain.Project, ids []string) []domain.Page {
	if len(ids) == 0 {
		return p.Pages
	}
	out := make([]domain.Page, 0, len(ids))
	for _, id := range ids {
		if pg := p.Page(id); pg != nil {
			out = append(out, *pg)
		}
	}
	return out
}

// hasPayload reports whether the payload matching the kind is present.
func hasPayload(o domain.Object) bool {
	switch o.Kind {
	case domain.KindText:
		return o.Text != nil
	case domain.KindImage:
		return o.Image != nil
	case domain.KindIcon:
		return o.Icon != nil
	}
	return o.Kind.Valid()
}
