/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the drawable primitive placed on a page. In memory an Object is a
// tagged union keyed by Kind: only the payload matching Kind is set. On the wire it is the
// flat camelCase object the canvas and saved projects use.

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the object variants.
type Kind string

const (
	KindText  Kind = "text"
	KindShape Kind = "shape"
	KindImage Kind = "image"
	KindIcon  Kind = "icon"
	// KindGroup is a layer-panel container; its Children keep their own z-order.
	KindGroup Kind = "group"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindShape, KindImage, KindIcon, KindGroup:
		return true
	}
	return false
}

type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

type Gradient struct {
	Type       string      `json:"type"` // linear or radial
	ColorStops []ColorStop `json:"colorStops"`
}

// Geometry is shared by every kind. Nil pointers mean "renderer default".
type Geometry struct {
	Left   float64
	Top    float64
	Width  *float64
	Height *float64
	Angle  *float64
	ScaleX *float64
	ScaleY *float64
}

// Style is shared by every kind.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth *float64
	Opacity     *float64
	Shadow      *Shadow
	Gradient    *Gradient
}

type TextPayload struct {
	Text           string
	FontFamily     string
	FontSize       *float64
	FontWeight     string
	FontStyle      string
	TextDecoration string
	TextAlign      string
	TextTransform  string
	ListStyle      string
	LetterSpacing  *float64
	LineHeight     *float64
	WordSpacing    *float64
}

type ShapePayload struct {
	ShapeType    string
	CornerRadius *float64
}

type ImagePayload struct {
	ImageURL string
}

type IconPayload struct {
	SVG    string
	Name   string
	Prefix string
}

// Object is a drawable primitive on a page.
type Object struct {
	ID   string
	Kind Kind
	Geometry
	Style

	// Layer attributes.
	Name   string
	Hidden bool
	Locked bool

	Text  *TextPayload
	Shape *ShapePayload
	Image *ImagePayload
	Icon  *IconPayload

	Children []Object
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 { return &v }

// NewText builds a text object.
func NewText(id, text string, left, top float64) Object {
	return Object{ID: id, Kind: KindText, Geometry: Geometry{Left: left, Top: top}, Text: &TextPayload{Text: text}}
}

// NewShape builds a shape object.
func NewShape(id, shapeType string, left, top float64) Object {
	return Object{ID: id, Kind: KindShape, Geometry: Geometry{Left: left, Top: top}, Shape: &ShapePayload{ShapeType: shapeType}}
}

// NewImage builds an image object.
func NewImage(id, url string, left, top float64) Object {
	return Object{ID: id, Kind: KindImage, Geometry: Geometry{Left: left, Top: top}, Image: &ImagePayload{ImageURL: url}}
}

// NewIcon builds an icon object.
func NewIcon(id string, icon IconPayload, left, top float64) Object {
	return Object{ID: id, Kind: KindIcon, Geometry: Geometry{Left: left, Top: top}, Icon: &icon}
}

// NewGroup wraps children into a group container.
func NewGroup(id, name string, children []Object) Object {
	g := Object{ID: id, Kind: KindGroup, Name: name, Children: children}
	for i, c := range children {
		if i == 0 || c.Left < g.Left {
			g.Left = c.Left
		}
		if i == 0 || c.Top < g.Top {
			g.Top = c.Top
		}
	}
	return g
}

// IsGroup reports whether the object is a group container.
func (o Object) IsGroup() bool { return o.Kind == KindGroup }

type wireObject struct {
	ID     string   `json:"id"`
	Type   Kind     `json:"type"`
	Left   float64  `json:"left"`
	Top    float64  `json:"top"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Angle  *float64 `json:"angle,omitempty"`
	ScaleX *float64 `json:"scaleX,omitempty"`
	ScaleY *float64 `json:"scaleY,omitempty"`

	Name    string `json:"name,omitempty"`
	Visible *bool  `json:"visible,omitempty"`
	Locked  bool   `json:"locked,omitempty"`

	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth *float64  `json:"strokeWidth,omitempty"`
	Opacity     *float64  `json:"opacity,omitempty"`
	Shadow      *Shadow   `json:"shadow,omitempty"`
	Gradient    *Gradient `json:"gradient,omitempty"`

	Text           *string  `json:"text,omitempty"`
	FontFamily     string   `json:"fontFamily,omitempty"`
	FontSize       *float64 `json:"fontSize,omitempty"`
	FontWeight     string   `json:"fontWeight,omitempty"`
	FontStyle      string   `json:"fontStyle,omitempty"`
	TextDecoration string   `json:"textDecoration,omitempty"`
	TextAlign      string   `json:"textAlign,omitempty"`
	TextTransform  string   `json:"textTransform,omitempty"`
	ListStyle      string   `json:"listStyle,omitempty"`
	LetterSpacing  *float64 `json:"letterSpacing,omitempty"`
	LineHeight     *float64 `json:"lineHeight,omitempty"`
	WordSpacing    *float64 `json:"wordSpacing,omitempty"`

	ShapeType    string   `json:"shapeType,omitempty"`
	CornerRadius *float64 `json:"cornerRadius,omitempty"`

	ImageURL string `json:"imageUrl,omitempty"`

	IconSVG    string `json:"iconSvg,omitempty"`
	IconName   string `json:"iconName,omitempty"`
	IconPrefix string `json:"iconPrefix,omitempty"`

	IsGroup  bool     `json:"isGroup,omitempty"`
	Children []Object `json:"children,omitempty"`
}

// MarshalJSON flattens the variant into the wire object.
func (o Object) MarshalJSON() ([]byte, error) {
	w := wireObject{
		ID: o.ID, Type: o.Kind,
		Left: o.Left, Top: o.Top, Width: o.Width, Height: o.Height,
		Angle: o.Angle, ScaleX: o.ScaleX, ScaleY: o.ScaleY,
		Name: o.Name, Locked: o.Locked,
		Fill: o.Fill, Stroke: o.Stroke, StrokeWidth: o.StrokeWidth, Opacity: o.Opacity,
		Shadow: o.Shadow, Gradient: o.Gradient,
	}
	if o.Hidden {
		f := false
		w.Visible = &f
	}
	switch o.Kind {
	case KindText:
		if t := o.Text; t != nil {
			txt := t.Text
			w.Text = &txt
			w.FontFamily, w.FontSize, w.FontWeight, w.FontStyle = t.FontFamily, t.FontSize, t.FontWeight, t.FontStyle
			w.TextDecoration, w.TextAlign, w.TextTransform, w.ListStyle = t.TextDecoration, t.TextAlign, t.TextTransform, t.ListStyle
			w.LetterSpacing, w.LineHeight, w.WordSpacing = t.LetterSpacing, t.LineHeight, t.WordSpacing
		}
	case KindShape:
		if s := o.Shape; s != nil {
			w.ShapeType, w.CornerRadius = s.ShapeType, s.CornerRadius
		}
	case KindImage:
		if im := o.Image; im != nil {
			w.ImageURL = im.ImageURL
		}
	case KindIcon:
		if ic := o.Icon; ic != nil {
			w.IconSVG, w.IconName, w.IconPrefix = ic.SVG, ic.Name, ic.Prefix
		}
	case KindGroup:
		w.IsGroup = true
		w.Children = o.Children
		if w.Children == nil {
			w.Children = []Object{}
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the wire object; payload fields of other kinds are dropped.
func (o *Object) UnmarshalJSON(data []byte) error {
	var w wireObject
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind := w.Type
	if w.IsGroup {
		kind = KindGroup
	}
	if !kind.Valid() {
		return fmt.Errorf("object %q: unknown type %q", w.ID, w.Type)
	}
	out := Object{
		ID: w.ID, Kind: kind,
		Geometry: Geometry{Left: w.Left, Top: w.Top, Width: w.Width, Height: w.Height, Angle: w.Angle, ScaleX: w.ScaleX, ScaleY: w.ScaleY},
		Style:    Style{Fill: w.Fill, Stroke: w.Stroke, StrokeWidth: w.StrokeWidth, Opacity: w.Opacity, Shadow: w.Shadow, Gradient: w.Gradient},
		Name:     w.Name,
		Hidden:   w.Visible != nil && !*w.Visible,
		Locked:   w.Locked,
	}
	switch kind {
	case KindText:
		t := &TextPayload{
			FontFamily: w.FontFamily, FontSize: w.FontSize, FontWeight: w.FontWeight, FontStyle: w.FontStyle,
			TextDecoration: w.TextDecoration, TextAlign: w.TextAlign, TextTransform: w.TextTransform, ListStyle: w.ListStyle,
			LetterSpacing: w.LetterSpacing, LineHeight: w.LineHeight, WordSpacing: w.WordSpacing,
		}
		if w.Text != nil {
			t.Text = *w.Text
		}
		out.Text = t
	case KindShape:
		out.Shape = &ShapePayload{ShapeType: w.ShapeType, CornerRadius: w.CornerRadius}
	case KindImage:
		out.Image = &ImagePayload{ImageURL: w.ImageURL}
	case KindIcon:
		out.Icon = &IconPayload{SVG: w.IconSVG, Name: w.IconName, Prefix: w.IconPrefix}
	case KindGroup:
		out.Children = w.Children
		if out.Children == nil {
			out.Children = []Object{}
		}
	}
	*o = out
	return nil
}

// Clone returns a deep copy of the object and its children.
func (o Object) Clone() Object {
	c := o
	c.Width, c.Height, c.Angle = cloneFloat(o.Width), cloneFloat(o.Height), cloneFloat(o.Angle)
	c.ScaleX, c.ScaleY = cloneFloat(o.ScaleX), cloneFloat(o.ScaleY)
	c.StrokeWidth, c.Opacity = cloneFloat(o.StrokeWidth), cloneFloat(o.Opacity)
	if o.Shadow != nil {
		s := *o.Shadow
		c.Shadow = &s
	}
	if o.Gradient != nil {
		g := *o.Gradient
		if o.Gradient.ColorStops != nil {
			g.ColorStops = make([]ColorStop, len(o.Gradient.ColorStops))
			copy(g.ColorStops, o.Gradient.ColorStops)
		}
		c.Gradient = &g
	}
	if o.Text != nil {
		t := *o.Text
		t.FontSize, t.LetterSpacing = cloneFloat(t.FontSize), cloneFloat(t.LetterSpacing)
		t.LineHeight, t.WordSpacing = cloneFloat(t.LineHeight), cloneFloat(t.WordSpacing)
		c.Text = &t
	}
	if o.Shape != nil {
		s := *o.Shape
		s.CornerRadius = cloneFloat(s.CornerRadius)
		c.Shape = &s
	}
	if o.Image != nil {
		im := *o.Image
		c.Image = &im
	}
	if o.Icon != nil {
		ic := *o.Icon
		c.Icon = &ic
	}
	c.Children = CloneObjects(o.Children)
	return c
}

// CloneObjects deep copies a list of objects, preserving nil.
func CloneObjects(objs []Object) []Object {
	if objs == nil {
		return nil
	}
	out := make([]Object, len(objs))
	for i := range objs {
		out[i] = objs[i].Clone()
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Fields is a partial update in wire form, e.g. {"left": 120, "fill": "#fff"}.
// A nil value unsets an optional field.
type Fields map[string]any

// immutableFields cannot be changed through Merge.
var immutableFields = map[string]bool{"id": true, "type": true, "isGroup": true, "children": true}

// Merge applies fields on top of the object and returns the result. The object's id,
// kind and children are preserved.
func (o Object) Merge(fields Fields) (Object, error) {
	if len(fields) == 0 {
		return o.Clone(), nil
	}
	base, err := json.Marshal(o)
	if err != nil {
		return Object{}, err
	}
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &m); err != nil {
		return Object{}, err
	}
	for k, v := range fields {
		if immutableFields[k] {
			continue
		}
		if v == nil {
			delete(m, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return Object{}, fmt.Errorf("field %q: %w", k, err)
		}
		m[k] = raw
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return Object{}, err
	}
	var out Object
	if err := json.Unmarshal(merged, &out); err != nil {
		return Object{}, fmt.Errorf("merge object %q: %w", o.ID, err)
	}
	return out, nil
}
