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
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"cardstudio/internal/domain"
)

// maxRasterSide bounds either side of a rendered image in pixels.
const maxRasterSide = 8192

// Renderer produces page previews. Thumbnail returns PNG bytes no wider than maxW.
type Renderer interface {
	Thumbnail(page domain.Page, maxW int) ([]byte, error)
}

// RasterRenderer draws pages with simple vector approximations. Images and
// icons are drawn as placeholders; rotation is ignored.
type RasterRenderer struct{}

var _ Renderer = RasterRenderer{}

func (RasterRenderer) Thumbnail(page domain.Page, maxW int) ([]byte, error) {
	scale := 1.0
	if maxW > 0 && page.Width > maxW {
		scale = float64(maxW) / float64(page.Width)
	}
	img, err := RenderPage(page, scale)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// DataURL wraps PNG bytes as a data: URL suitable for page thumbnails.
func DataURL(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPage rasterizes page at the given scale (1 = one pixel per page unit).
func RenderPage(page domain.Page, scale float64) (*image.NRGBA, error) {
	if scale <= 0 {
		scale = 1
	}
	pw := int(math.Round(float64(page.Width) * scale))
	ph := int(math.Round(float64(page.Height) * scale))
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("page %q has no area", page.ID)
	}
	if pw > maxRasterSide || ph > maxRasterSide {
		return nil, fmt.Errorf("page %q too large to rasterize (%dx%d px)", page.ID, pw, ph)
	}
	img := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	bg, ok := parseColor(page.BackgroundColor)
	if !ok {
		bg = color.NRGBA{255, 255, 255, 255}
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	r := rasterizer{img: img, scale: scale}
	r.objects(page.Objects)
	return img, nil
}

type rasterizer struct {
	img   *image.NRGBA
	scale float64
}

func (r rasterizer) objects(objs []domain.Object) {
	for _, o := range objs {
		if o.Hidden || !hasPayload(o) {
			continue
		}
		switch o.Kind {
		case domain.KindGroup:
			r.objects(o.Children)
		case domain.KindText:
			r.text(o)
		case domain.KindShape:
			r.shape(o)
		case domain.KindImage:
			r.placeholder(o, color.NRGBA{229, 231, 235, 255}, color.NRGBA{156, 163, 175, 255})
		case domain.KindIcon:
			fill, ok := parseColor(o.Fill)
			if !ok {
				fill = color.NRGBA{17, 24, 39, 255}
			}
			w, h := objectSize(o)
			r.fillOutline(o.Left, o.Top, shapeOutline("circle", w, h, 0), withOpacity(fill, o.Opacity))
		}
	}
}

func (r rasterizer) shape(o domain.Object) {
	w, h := objectSize(o)
	st := shapeType(o)
	sw := strokeWidth(o)
	if st == "line" {
		c, ok := parseColor(o.Stroke)
		if !ok {
			c, ok = parseColor(fillOf(o))
		}
		if ok {
			r.fillOutline(o.Left, o.Top, shapeOutline("rectangle", w, math.Max(h, math.Max(sw, 1)), 0), withOpacity(c, o.Opacity))
		}
		return
	}
	out := shapeOutline(st, w, h, cornerRadius(o))
	if o.Shadow != nil {
		if c, ok := parseColor(o.Shadow.Color); ok {
			r.fillOutline(o.Left+o.Shadow.OffsetX, o.Top+o.Shadow.OffsetY, out, withOpacity(c, o.Opacity))
		}
	}
	if c, ok := parseColor(fillOf(o)); ok {
		r.fillOutline(o.Left, o.Top, out, withOpacity(c, o.Opacity))
	}
	if c, ok := parseColor(o.Stroke); ok && sw > 0 {
		r.strokeOutline(o.Left, o.Top, st, w, h, cornerRadius(o), sw, withOpacity(c, o.Opacity))
	}
}

func (r rasterizer) placeholder(o domain.Object, fill, border color.NRGBA) {
	w, h := objectSize(o)
	r.fillOutline(o.Left, o.Top, shapeOutline("rectangle", w, h, 0), withOpacity(fill, o.Opacity))
	r.strokeOutline(o.Left, o.Top, "rectangle", w, h, 0, 1/r.scale, withOpacity(border, o.Opacity))
}

// pixelBox maps a page-space box to clipped pixel bounds.
func (r rasterizer) pixelBox(left, top, w, h float64) image.Rectangle {
	b := image.Rect(
		int(math.Floor(left*r.scale)), int(math.Floor(top*r.scale)),
		int(math.Ceil((left+w)*r.scale)), int(math.Ceil((top+h)*r.scale)),
	)
	return b.Intersect(r.img.Bounds())
}

func (r rasterizer) paint(box image.Rectangle, c color.NRGBA, hit func(x, y float64) bool) {
	if box.Empty() || c.A == 0 {
		return
	}
	mask := image.NewAlpha(box)
	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			if hit((float64(px)+0.5)/r.scale, (float64(py)+0.5)/r.scale) {
				mask.SetAlpha(px, py, color.Alpha{A: 255})
			}
		}
	}
	draw.DrawMask(r.img, box, image.NewUniform(c), image.Point{}, mask, box.Min, draw.Over)
}

func (r rasterizer) fillOutline(left, top float64, out outline, c color.NRGBA) {
	r.paint(r.pixelBox(left, top, out.w, out.h), c, func(x, y float64) bool {
		return out.contains(x-left, y-top)
	})
}

// strokeOutline paints the band between the outline and the outline inset by sw.
func (r rasterizer) strokeOutline(left, top float64, st string, w, h, radius, sw float64, c color.NRGBA) {
	outer := shapeOutline(st, w, h, radius)
	inner := shapeOutline(st, w-2*sw, h-2*sw, radius-sw)
	r.paint(r.pixelBox(left, top, w, h), c, func(x, y float64) bool {
		lx, ly := x-left, y-top
		return outer.contains(lx, ly) && (inner.w <= 0 || inner.h <= 0 || !inner.contains(lx-sw, ly-sw))
	})
}

// text draws each line with the 7x13 bitmap face, scaled to the font size.
func (r rasterizer) text(o domain.Object) {
	c, ok := parseColor(fillOf(o))
	if !ok || o.Text == nil {
		return
	}
	c = withOpacity(c, o.Opacity)
	face := basicfont.Face7x13
	size := fontSize(o) * r.scale
	if o.ScaleY != nil {
		size *= *o.ScaleY
	}
	k := size / float64(face.Height)
	boxW, _ := objectSize(o)
	y := o.Top * r.scale
	for _, line := range strings.Split(applyTransform(o.Text.Text, o.Text.TextTransform), "\n") {
		if line != "" && k > 0 {
			d := &font.Drawer{Face: face, Src: image.NewUniform(c)}
			adv := d.MeasureString(line).Ceil()
			if adv <= 0 {
				y += size * 1.16
				continue
			}
			src := image.NewNRGBA(image.Rect(0, 0, adv, face.Height))
			d.Dst = src
			d.Dot = fixed.P(0, face.Ascent)
			d.DrawString(line)

			lineW := float64(adv) * k
			x := o.Left * r.scale
			switch o.Text.TextAlign {
			case "center":
				x += (boxW*r.scale - lineW) / 2
			case "right":
				x += boxW*r.scale - lineW
			}
			dst := image.Rect(int(x), int(y), int(x+lineW+0.5), int(y+size+0.5))
			draw.ApproxBiLinear.Scale(r.img, dst, src, src.Bounds(), draw.Over, nil)
		}
		y += size * 1.16
	}
}

func applyTransform(s, transform string) string {
	switch transform {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	}
	return s
}

// PNGOptions controls per-page PNG export.
type PNGOptions struct {
	// Scale multiplies page units to pixels; 0 means 1.
	Scale float64
	// Pages lists page ids to export; empty exports all pages.
	Pages []string
}

// ExportPNGPages writes page-<n>.png files to outDir and returns their paths.
func ExportPNGPages(p domain.Project, outDir string, opt PNGOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var paths []string
	for i, pg := range pagesByID(p, opt.Pages) {
		img, err := RenderPage(pg, opt.Scale)
		if err != nil {
			return paths, err
		}
		data, err := EncodePNG(img)
		if err != nil {
			return paths, err
		}
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.png", i+1))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return paths, fmt.Errorf("write png: %w", err)
		}
		paths = append(paths, name)
	}
	return paths, nil
}
