/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cardstudio/internal/domain"
)

// ExportSVG renders one page of p as a standalone SVG document. An empty pageID
// selects the current page.
func ExportSVG(p domain.Project, pageID string) ([]byte, error) {
	if pageID == "" {
		pageID = p.SelectedPageID
	}
	pg := p.Page(pageID)
	if pg == nil {
		return nil, fmt.Errorf("page %q not found", pageID)
	}
	w := &svgWriter{}
	w.f("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	w.f("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n", pg.Width, pg.Height, pg.Width, pg.Height)
	w.f("  <title>%s</title>\n", esc(pg.Name))
	bg := pg.BackgroundColor
	if bg == "" {
		bg = "#ffffff"
	}
	w.f("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n", pg.Width, pg.Height, esc(bg))
	w.objects(pg.Objects, 1)
	w.f("</svg>\n")
	if w.err != nil {
		return nil, fmt.Errorf("write svg: %w", w.err)
	}
	return w.buf.Bytes(), nil
}

// ExportSVGPages writes page-<n>.svg files to outDir and returns their paths.
func ExportSVGPages(p domain.Project, outDir string, pages []string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var paths []string
	for i, pg := range pagesByID(p, pages) {
		data, err := ExportSVG(p, pg.ID)
		if err != nil {
			return paths, err
		}
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.svg", i+1))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return paths, fmt.Errorf("write svg: %w", err)
		}
		paths = append(paths, name)
	}
	return paths, nil
}

type svgWriter struct {
	buf bytes.Buffer
	err error
}

func (w *svgWriter) f(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(&w.buf, format, args...)
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func (w *svgWriter) objects(objs []domain.Object, depth int) {
	for _, o := range objs {
		if o.Hidden || !hasPayload(o) {
			continue
		}
		ind := strings.Repeat("  ", depth)
		defs := w.defs(o, ind)
		common := fmt.Sprintf(" id=\"%s\"%s%s", esc(o.ID), defs, w.transform(o))
		if o.Opacity != nil {
			common += fmt.Sprintf(" opacity=\"%g\"", *o.Opacity)
		}
		switch o.Kind {
		case domain.KindGroup:
			w.f("%s<g%s>\n", ind, common)
			w.objects(o.Children, depth+1)
			w.f("%s</g>\n", ind)
		case domain.KindShape:
			w.shape(o, ind, common)
		case domain.KindText:
			w.text(o, ind, common)
		case domain.KindImage:
			ww, hh := objectSize(o)
			w.f("%s<image%s x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" href=\"%s\" preserveAspectRatio=\"xMidYMid slice\"/>\n",
				ind, common, o.Left, o.Top, ww, hh, esc(o.Image.ImageURL))
		case domain.KindIcon:
			ww, hh := objectSize(o)
			href := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(o.Icon.SVG))
			w.f("%s<image%s x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" href=\"%s\"/>\n", ind, common, o.Left, o.Top, ww, hh, href)
		}
	}
}

// defs writes gradient and shadow definitions for o and returns the attributes
// that reference them.
func (w *svgWriter) defs(o domain.Object, ind string) string {
	attrs := ""
	if o.Gradient != nil && len(o.Gradient.ColorStops) > 0 {
		tag := "linearGradient"
		if o.Gradient.Type == "radial" {
			tag = "radialGradient"
		}
		id := "grad-" + o.ID
		w.f("%s<defs><%s id=\"%s\">", ind, tag, esc(id))
		for _, s := range o.Gradient.ColorStops {
			w.f("<stop offset=\"%g\" stop-color=\"%s\"/>", s.Offset, esc(s.Color))
		}
		w.f("</%s></defs>\n", tag)
	}
	if o.Shadow != nil {
		id := "shadow-" + o.ID
		w.f("%s<defs><filter id=\"%s\"><feDropShadow dx=\"%g\" dy=\"%g\" stdDeviation=\"%g\" flood-color=\"%s\"/></filter></defs>\n",
			ind, esc(id), o.Shadow.OffsetX, o.Shadow.OffsetY, o.Shadow.Blur/2, esc(o.Shadow.Color))
		attrs += fmt.Sprintf(" filter=\"url(#%s)\"", esc(id))
	}
	return attrs
}

func (w *svgWriter) transform(o domain.Object) string {
	if o.Angle == nil || *o.Angle == 0 {
		return ""
	}
	return fmt.Sprintf(" transform=\"rotate(%g %g %g)\"", *o.Angle, o.Left, o.Top)
}

func (w *svgWriter) paint(o domain.Object) string {
	fill := esc(fillOf(o))
	if o.Gradient != nil && len(o.Gradient.ColorStops) > 0 {
		fill = "url(#" + esc("grad-"+o.ID) + ")"
	}
	if fill == "" {
		fill = "none"
	}
	s := fmt.Sprintf(" fill=\"%s\"", fill)
	if sw := strokeWidth(o); sw > 0 && o.Stroke != "" {
		s += fmt.Sprintf(" stroke=\"%s\" stroke-width=\"%g\"", esc(o.Stroke), sw)
	}
	return s
}

func (w *svgWriter) shape(o domain.Object, ind, common string) {
	ww, hh := objectSize(o)
	st := shapeType(o)
	out := shapeOutline(st, ww, hh, cornerRadius(o))
	switch out.kind {
	case outlineLine:
		stroke := o.Stroke
		if stroke == "" {
			stroke = fillOf(o)
		}
		sw := strokeWidth(o)
		if sw == 0 {
			sw = 1
		}
		w.f("%s<line%s x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
			ind, common, o.Left, o.Top+hh/2, o.Left+ww, o.Top+hh/2, esc(stroke), sw)
	case outlineEllipse:
		w.f("%s<ellipse%s cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\"%s/>\n", ind, common, o.Left+ww/2, o.Top+hh/2, ww/2, hh/2, w.paint(o))
	case outlinePolygon:
		pts := make([]string, len(out.points))
		for i, p := range out.points {
			pts[i] = fmt.Sprintf("%.2f,%.2f", o.Left+p.X, o.Top+p.Y)
		}
		w.f("%s<polygon%s points=\"%s\"%s/>\n", ind, common, strings.Join(pts, " "), w.paint(o))
	default:
		rx := ""
		if out.radius > 0 {
			rx = fmt.Sprintf(" rx=\"%g\" ry=\"%g\"", out.radius, out.radius)
		}
		w.f("%s<rect%s x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"%s%s/>\n", ind, common, o.Left, o.Top, ww, hh, rx, w.paint(o))
	}
}

func (w *svgWriter) text(o domain.Object, ind, common string) {
	t := o.Text
	size := fontSize(o)
	attrs := fmt.Sprintf(" font-size=\"%g\"", size)
	if t.FontFamily != "" {
		attrs += fmt.Sprintf(" font-family=\"%s\"", esc(t.FontFamily))
	}
	if t.FontWeight != "" {
		attrs += fmt.Sprintf(" font-weight=\"%s\"", esc(t.FontWeight))
	}
	if t.FontStyle != "" {
		attrs += fmt.Sprintf(" font-style=\"%s\"", esc(t.FontStyle))
	}
	if t.TextDecoration != "" {
		attrs += fmt.Sprintf(" text-decoration=\"%s\"", esc(t.TextDecoration))
	}
	if t.LetterSpacing != nil {
		attrs += fmt.Sprintf(" letter-spacing=\"%g\"", *t.LetterSpacing)
	}
	ww, _ := objectSize(o)
	x, anchor := o.Left, "start"
	switch t.TextAlign {
	case "center":
		x, anchor = o.Left+ww/2, "middle"
	case "right":
		x, anchor = o.Left+ww, "end"
	}
	lh := 1.16
	if t.LineHeight != nil && *t.LineHeight > 0 {
		lh = *t.LineHeight
	}
	w.f("%s<text%s x=\"%g\" y=\"%g\" text-anchor=\"%s\"%s%s>", ind, common, x, o.Top+size, anchor, attrs, w.paint(o))
	for i, line := range strings.Split(applyTransform(t.Text, t.TextTransform), "\n") {
		dy := "0"
		if i > 0 {
			dy = fmt.Sprintf("%g", size*lh)
		}
		w.f("<tspan x=\"%g\" dy=\"%s\">%s</tspan>", x, dy, esc(line))
	}
	w.f("</text>\n")
}
