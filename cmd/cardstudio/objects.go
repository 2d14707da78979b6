/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cardstudio/internal/catalog"
	"cardstudio/internal/domain"
	"cardstudio/internal/editor"
	"cardstudio/internal/guides"
	"cardstudio/internal/telemetry"
)

func newObjectCmds(a *app) []*cobra.Command {
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an object to the current page",
	}

	// added runs an add operation and prints the new id.
	added := func(cmd *cobra.Command, kind string, fn func(ed *editor.Editor) string) error {
		return a.edit(cmd.Context(), func(ed *editor.Editor) (bool, error) {
			id := fn(ed)
			if id == "" {
				return false, fmt.Errorf("%s was not added", kind)
			}
			telemetry.Event("object_added", map[string]any{"kind": kind})
			a.printf("%s\n", id)
			return true, nil
		})
	}

	add.AddCommand(
		&cobra.Command{
			Use:   "shape <type>",
			Short: "Add a shape (see 'cardstudio shapes')",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, ok := catalog.ShapeDefaults(args[0]); !ok {
					return fmt.Errorf("unknown shape %q", args[0])
				}
				return added(cmd, "shape", func(ed *editor.Editor) string { return ed.AddShape(args[0]) })
			},
		},
		&cobra.Command{
			Use:   "text <text>...",
			Short: "Add a text box",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				text := strings.Join(args, " ")
				return added(cmd, "text", func(ed *editor.Editor) string { return ed.AddText(text) })
			},
		},
		&cobra.Command{
			Use:   "image <url>",
			Short: "Add an image by URL or data URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return added(cmd, "image", func(ed *editor.Editor) string { return ed.AddImage(args[0]) })
			},
		},
		newAddIconCmd(a, added),
	)

	update := &cobra.Command{
		Use:   "set <object-id> <json>",
		Short: `Merge JSON fields into an object, e.g. '{"fill":"#ff0000"}'`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				return ed.UpdateObjectJSON(args[0], []byte(args[1]))
			})
		},
	}

	remove := &cobra.Command{
		Use:     "rm <object-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an object",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				if !ed.DeleteObject(args[0]) {
					return false, fmt.Errorf("object %q not found", args[0])
				}
				return true, nil
			})
		},
	}

	dup := &cobra.Command{
		Use:   "dup <object-id>",
		Short: "Duplicate an object with an offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return added(cmd, "duplicate", func(ed *editor.Editor) string { return ed.DuplicateObject(args[0]) })
		},
	}

	order := &cobra.Command{
		Use:       "order <up|down|front|back> <object-id>",
		Short:     "Change an object's stacking order",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"up", "down", "front", "back"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				var op func(string) bool
				switch args[0] {
				case "up":
					op = ed.MoveObjectUp
				case "down":
					op = ed.MoveObjectDown
				case "front":
					op = ed.BringToFront
				case "back":
					op = ed.SendToBack
				default:
					return false, fmt.Errorf("unknown order %q", args[0])
				}
				return op(args[1]), nil
			})
		},
	}

	var snap bool
	move := &cobra.Command{
		Use:   "move <object-id> <left> <top>",
		Short: "Move an object, optionally snapping to the page and other objects",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err1 := strconv.ParseFloat(args[1], 64)
			top, err2 := strconv.ParseFloat(args[2], 64)
			if err1 != nil || err2 != nil {
				return fmt.Errorf("position must be numeric")
			}
			return a.edit(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				o := ed.Object(args[0])
				if o == nil {
					return false, fmt.Errorf("object %q not found", args[0])
				}
				if snap {
					var lines []guides.Line
					left, top, lines = guides.SnapObject(*ed.CurrentPage(), *o, left, top, guides.Options{Edges: true, Centers: true})
					for _, l := range lines {
						a.printf("snapped to %s %s guide at %g\n", l.Kind, l.Orientation, l.Position)
					}
				}
				return ed.UpdateObject(args[0], domain.Fields{"left": left, "top": top}), nil
			})
		},
	}
	move.Flags().BoolVar(&snap, "snap", false, "snap edges and centers to nearby guides")

	shapes := &cobra.Command{
		Use:   "shapes",
		Short: "List shape types and icon names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.printf("Shapes: %s\n", strings.Join(catalog.ShapeTypes(), ", "))
			a.printf("Icons:  %s\n", strings.Join(catalog.IconNames(), ", "))
		},
	}

	return []*cobra.Command{add, update, remove, dup, order, move, shapes}
}

func newAddIconCmd(a *app, added func(*cobra.Command, string, func(*editor.Editor) string) error) *cobra.Command {
	var svgPath, prefix string
	cmd := &cobra.Command{
		Use:   "icon <name>",
		Short: "Add an icon from an SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(svgPath)
			if err != nil {
				return fmt.Errorf("read icon svg: %w", err)
			}
			icon := editor.IconDescriptor{Name: args[0], Prefix: prefix, SVG: string(b)}
			return added(cmd, "icon", func(ed *editor.Editor) string { return ed.AddIcon(icon) })
		},
	}
	cmd.Flags().StringVar(&svgPath, "svg", "", "path to the icon's SVG markup")
	cmd.Flags().StringVar(&prefix, "prefix", "mdi", "icon set prefix")
	_ = cmd.MarkFlagRequired("svg")
	return cmd
}
