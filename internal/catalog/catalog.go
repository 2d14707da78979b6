/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog holds the static shape and icon tables used to seed new objects.
package catalog

import "sort"

// ShapeStyle is the default look of a newly placed shape.
type ShapeStyle struct {
	Fill         string
	Stroke       string
	StrokeWidth  float64
	CornerRadius float64
	Width        float64
	Height       float64
}

// IconStyle is the default look of a newly placed icon.
type IconStyle struct {
	Fill string
	Size float64
}

var shapes = map[string]ShapeStyle{
	"rectangle":         {Fill: "#3b82f6", Width: 200, Height: 120},
	"rounded-rectangle": {Fill: "#8b5cf6", CornerRadius: 16, Width: 200, Height: 120},
	"circle":            {Fill: "#ef4444", Width: 120, Height: 120},
	"ellipse":           {Fill: "#f97316", Width: 180, Height: 110},
	"triangle":          {Fill: "#10b981", Width: 140, Height: 120},
	"star":              {Fill: "#facc15", Width: 140, Height: 140},
	"heart":             {Fill: "#ec4899", Width: 130, Height: 120},
	"diamond":           {Fill: "#06b6d4", Width: 120, Height: 140},
	"hexagon":           {Fill: "#6366f1", Width: 140, Height: 124},
	"line":              {Stroke: "#111827", StrokeWidth: 4, Width: 200, Height: 0},
}

var icons = map[string]IconStyle{
	"heart":   {Fill: "#e11d48", Size: 48},
	"star":    {Fill: "#f59e0b", Size: 48},
	"ring":    {Fill: "#d4af37", Size: 48},
	"cake":    {Fill: "#f472b6", Size: 56},
	"gift":    {Fill: "#ef4444", Size: 48},
	"music":   {Fill: "#111827", Size: 40},
	"glass":   {Fill: "#a16207", Size: 48},
	"flower":  {Fill: "#db2777", Size: 56},
	"map-pin": {Fill: "#dc2626", Size: 40},
}

var defaultIcon = IconStyle{Fill: "#111827", Size: 48}

// ShapeDefaults returns the catalog entry for a shape type.
func ShapeDefaults(shapeType string) (ShapeStyle, bool) {
	s, ok := shapes[shapeType]
	return s, ok
}

// IconDefaults returns the catalog entry for an icon, or a generic style for unknown names.
func IconDefaults(name string) IconStyle {
	if s, ok := icons[name]; ok {
		return s
	}
	return defaultIcon
}

// ShapeTypes lists known shape types in sorted order.
func ShapeTypes() []string {
	out := make([]string, 0, len(shapes))
	for k := range shapes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IconNames lists icons with a dedicated style.
func IconNames() []string {
	out := make([]string, 0, len(icons))
	for k := range icons {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
