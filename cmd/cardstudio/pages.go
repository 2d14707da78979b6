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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cardstudio/internal/editor"
	"cardstudio/internal/navigator"
)

func pageIndex(nav *navigator.Navigator, id string) int {
	for _, pg := range nav.Pages() {
		if pg.ID == id {
			return pg.Index
		}
	}
	return -1
}

func newPageCmd(a *app) *cobra.Command {
	page := &cobra.Command{
		Use:   "page",
		Short: "Add, remove and arrange pages",
	}

	// navEdit runs fn against a navigator over the loaded project.
	navEdit := func(cmd *cobra.Command, fn func(nav *navigator.Navigator, ed *editor.Editor) (bool, error)) error {
		return a.edit(cmd.Context(), func(ed *editor.Editor) (bool, error) {
			return fn(navigator.New(ed, nil, 0), ed)
		})
	}

	page.AddCommand(
		&cobra.Command{
			Use:   "add",
			Short: "Append an empty page and select it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return navEdit(cmd, func(nav *navigator.Navigator, _ *editor.Editor) (bool, error) {
					a.printf("%s\n", nav.Add())
					return true, nil
				})
			},
		},
		&cobra.Command{
			Use:   "dup <page-id>",
			Short: "Duplicate a page",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return navEdit(cmd, func(nav *navigator.Navigator, _ *editor.Editor) (bool, error) {
					id := nav.Duplicate(args[0])
					if id == "" {
						return false, fmt.Errorf("page %q not found", args[0])
					}
					a.printf("%s\n", id)
					return true, nil
				})
			},
		},
		&cobra.Command{
			Use:     "rm <page-id>",
			Aliases: []string{"delete"},
			Short:   "Delete a page (the last page cannot be deleted)",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return navEdit(cmd, func(nav *navigator.Navigator, _ *editor.Editor) (bool, error) {
					if !nav.Delete(args[0]) {
						return false, fmt.Errorf("page %q not deleted", args[0])
					}
					return true, nil
				})
			},
		},
		&cobra.Command{
			Use:   "select <page-id>",
			Short: "Make a page current",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return navEdit(cmd, func(nav *navigator.Navigator, _ *editor.Editor) (bool, error) {
					return nav.Select(args[0]), nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename <page-id> <name>",
			Short: "Rename a page",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return navEdit(cmd, func(nav *navigator.Navigator, _ *editor.Editor) (bool, error) {
					return nav.Rename(args[0], args[1]), nil
				})
			},
		},
		&cobra.Command{
			Use:   "move <page-id> <position>",
			Short: "Move a page to a 1-based position",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				pos, err := strconv.Atoi(args[1])
				if err != nil || pos < 1 {
					return fmt.Errorf("invalid position %q", args[1])
				}
				return navEdit(cmd, func(nav *navigator.Navigator, _ *editor.Editor) (bool, error) {
					if !nav.BeginDrag(pageIndex(nav, args[0])) {
						return false, fmt.Errorf("page %q not found", args[0])
					}
					return nav.DropAt(pos - 1), nil
				})
			},
		},
		&cobra.Command{
			Use:   "resize <page-id> <width>x<height>",
			Short: "Change a page's canvas size",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, h, err := parseSize(args[1])
				if err != nil {
					return err
				}
				return navEdit(cmd, func(_ *navigator.Navigator, ed *editor.Editor) (bool, error) {
					return ed.ResizePage(args[0], w, h), nil
				})
			},
		},
		&cobra.Command{
			Use:   "bg <color>",
			Short: "Set the current page's background color",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return navEdit(cmd, func(_ *navigator.Navigator, ed *editor.Editor) (bool, error) {
					return ed.UpdateBackgroundColor(args[0]), nil
				})
			},
		},
	)
	return page
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", s)
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(ws))
	h, err2 := strconv.Atoi(strings.TrimSpace(hs))
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", s)
	}
	return w, h, nil
}
