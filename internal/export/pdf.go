/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"cardstudio/internal/domain"
	"cardstudio/internal/version"
)

// PDFOptions controls PDF export. Page units map 1:1 to points.
//
// Bleed adds a margin of that many points around every page; the page background
// extends into it. IncludeGuides draws the trim box as a hairline.
type PDFOptions struct {
	Bleed         float64
	IncludeGuides bool
	// Pages lists page ids to export; empty exports all pages.
	Pages []string
}

// ExportPDF writes a multi-page PDF of p to w. Text uses the built-in Helvetica
// family; images and icons are drawn as placeholders.
func ExportPDF(p domain.Project, w io.Writer, opt PDFOptions) error {
	pages := pagesByID(p, opt.Pages)
	if len(pages) == 0 {
		return fmt.Errorf("project %s has no pages to export", p.ID)
	}
	bleed := opt.Bleed
	if bleed < 0 {
		bleed = 0
	}
	first := pages[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(first.Width) + 2*bleed, Ht: float64(first.Height) + 2*bleed},
	})
	pdf.SetTitle(p.Name, true)
	pdf.SetCreator("cardstudio "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, pg := range pages {
		mediaW, mediaH := float64(pg.Width)+2*bleed, float64(pg.Height)+2*bleed
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: mediaW, Ht: mediaH})

		bg, ok := parseColor(pg.BackgroundColor)
		if !ok {
			bg = namedColors["white"]
		}
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		pdf.Rect(0, 0, mediaW, mediaH, "F")

		pw := pdfWriter{pdf: pdf, tr: tr, dx: bleed, dy: bleed}
		pw.objects(pg.Objects)

		if opt.IncludeGuides {
			pdf.SetAlpha(1, "Normal")
			pdf.SetDrawColor(255, 0, 0)
			pdf.SetLineWidth(0.2)
			pdf.Rect(bleed, bleed, float64(pg.Width), float64(pg.Height), "D")
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDFFile writes the PDF to path, creating parent directories.
func ExportPDFFile(p domain.Project, path string, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := ExportPDF(p, f, opt); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	dx, dy float64
}

func (pw pdfWriter) objects(objs []domain.Object) {
	for _, o := range objs {
		if o.Hidden || !hasPayload(o) {
			continue
		}
		if o.Kind == domain.KindGroup {
			pw.objects(o.Children)
			continue
		}
		alpha := 1.0
		if o.Opacity != nil {
			alpha = *o.Opacity
		}
		pw.pdf.SetAlpha(alpha, "Normal")
		rotated := o.Angle != nil && *o.Angle != 0
		if rotated {
			pw.pdf.TransformBegin()
			// PDF rotation is counter-clockwise; canvas angles are clockwise.
			pw.pdf.TransformRotate(-*o.Angle, o.Left+pw.dx, o.Top+pw.dy)
		}
		switch o.Kind {
		case domain.KindShape:
			pw.shape(o)
		case domain.KindText:
			pw.text(o)
		case domain.KindImage:
			w, h := objectSize(o)
			pw.pdf.SetFillColor(229, 231, 235)
			pw.pdf.SetDrawColor(156, 163, 175)
			pw.pdf.SetLineWidth(1)
			pw.pdf.Rect(o.Left+pw.dx, o.Top+pw.dy, w, h, "FD")
		case domain.KindIcon:
			w, h := objectSize(o)
			c, ok := parseColor(o.Fill)
			if !ok {
				c = namedColors["black"]
			}
			pw.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			pw.pdf.Ellipse(o.Left+pw.dx+w/2, o.Top+pw.dy+h/2, w/2, h/2, 0, "F")
		}
		if rotated {
			pw.pdf.TransformEnd()
		}
	}
}

func (pw pdfWriter) shape(o domain.Object) {
	w, h := objectSize(o)
	out := shapeOutline(shapeType(o), w, h, cornerRadius(o))
	x, y := o.Left+pw.dx, o.Top+pw.dy

	style := ""
	if c, ok := parseColor(fillOf(o)); ok && out.kind != outlineLine {
		pw.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		style += "F"
	}
	sw := strokeWidth(o)
	if c, ok := parseColor(o.Stroke); ok && sw > 0 {
		pw.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		pw.pdf.SetLineWidth(sw)
		style += "D"
	}
	if style == "" {
		return
	}
	switch out.kind {
	case outlineLine:
		pw.pdf.Line(x, y+h/2, x+w, y+h/2)
	case outlineEllipse:
		pw.pdf.Ellipse(x+w/2, y+h/2, w/2, h/2, 0, style)
	case outlinePolygon:
		pts := make([]gofpdf.PointType, len(out.points))
		for i, p := range out.points {
			pts[i] = gofpdf.PointType{X: x + p.X, Y: y + p.Y}
		}
		pw.pdf.Polygon(pts, style)
	default:
		// corner radius is not drawn
		pw.pdf.Rect(x, y, w, h, style)
	}
}

func (pw pdfWriter) text(o domain.Object) {
	c, ok := parseColor(fillOf(o))
	if !ok {
		return
	}
	t := o.Text
	size := fontSize(o)
	if o.ScaleY != nil {
		size *= *o.ScaleY
	}
	fontStyle := ""
	if t.FontWeight == "bold" || t.FontWeight == "700" || t.FontWeight == "800" || t.FontWeight == "900" {
		fontStyle += "B"
	}
	if t.FontStyle == "italic" {
		fontStyle += "I"
	}
	if strings.Contains(t.TextDecoration, "underline") {
		fontStyle += "U"
	}
	pw.pdf.SetFont("Helvetica", fontStyle, size)
	pw.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	boxW, _ := objectSize(o)
	lh := 1.16
	if t.LineHeight != nil && *t.LineHeight > 0 {
		lh = *t.LineHeight
	}
	y := o.Top + pw.dy + size
	for _, line := range strings.Split(applyTransform(t.Text, t.TextTransform), "\n") {
		s := pw.tr(line)
		x := o.Left + pw.dx
		switch t.TextAlign {
		case "center":
			x += (boxW - pw.pdf.GetStringWidth(s)) / 2
		case "right":
			x += boxW - pw.pdf.GetStringWidth(s)
		}
		pw.pdf.Text(x, y, s)
		y += size * lh
	}
}
