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
	"cardstudio/internal/layers"
)

func (a *app) printNodes(nodes []layers.Node) {
	for _, n := range nodes {
		var flags []string
		if n.Selected {
			flags = append(flags, "selected")
		}
		if !n.Visible {
			flags = append(flags, "hidden")
		}
		if n.Locked {
			flags = append(flags, "locked")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " [" + strings.Join(flags, ",") + "]"
		}
		a.printf("%s%s  %s (%s)%s\n", strings.Repeat("  ", n.Depth), n.ID, n.Name, n.Kind, suffix)
		a.printNodes(n.Children)
	}
}

func newLayersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Show and edit the layer tree of the current page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd.Context(), func(ed *editor.Editor) error {
				a.printNodes(layers.NewPanel(ed).Nodes())
				return nil
			})
		},
	}

	panelEdit := func(cmd *cobra.Command, fn func(pl *layers.Panel) (bool, error)) error {
		return a.edit(cmd.Context(), func(ed *editor.Editor) (bool, error) {
			return fn(layers.NewPanel(ed))
		})
	}

	var groupName string
	group := &cobra.Command{
		Use:   "group <object-id> <object-id>...",
		Short: "Group objects that share a parent",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return panelEdit(cmd, func(pl *layers.Panel) (bool, error) {
				for _, id := range args {
					pl.Toggle(id)
				}
				gid := pl.GroupSelection(groupName)
				if gid == "" {
					return false, fmt.Errorf("objects cannot be grouped")
				}
				a.printf("%s\n", gid)
				return true, nil
			})
		},
	}
	group.Flags().StringVar(&groupName, "name", "", "group name")

	cmd.AddCommand(
		group,
		&cobra.Command{
			Use:   "ungroup <group-id>",
			Short: "Dissolve a group in place",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return panelEdit(cmd, func(pl *layers.Panel) (bool, error) {
					if !pl.Ungroup(args[0]) {
						return false, fmt.Errorf("%q is not a group", args[0])
					}
					return true, nil
				})
			},
		},
		&cobra.Command{
			Use:   "move <parent-id|-> <from-row> <to-row>",
			Short: "Reorder a layer; rows count from the top, '-' is the page",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				from, err1 := strconv.Atoi(args[1])
				to, err2 := strconv.Atoi(args[2])
				if err1 != nil || err2 != nil {
					return fmt.Errorf("rows must be integers")
				}
				parent := args[0]
				if parent == "-" {
					parent = ""
				}
				return panelEdit(cmd, func(pl *layers.Panel) (bool, error) {
					return pl.Move(parent, from, to), nil
				})
			},
		},
		&cobra.Command{
			Use:   "hide <object-id>",
			Short: "Toggle an object's visibility",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return panelEdit(cmd, func(pl *layers.Panel) (bool, error) { return pl.ToggleVisible(args[0]), nil })
			},
		},
		&cobra.Command{
			Use:   "lock <object-id>",
			Short: "Toggle an object's lock",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return panelEdit(cmd, func(pl *layers.Panel) (bool, error) { return pl.ToggleLocked(args[0]), nil })
			},
		},
		&cobra.Command{
			Use:   "rename <object-id> <name>",
			Short: "Rename a layer",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return panelEdit(cmd, func(pl *layers.Panel) (bool, error) {
					if !pl.BeginRename(args[0]) {
						return false, fmt.Errorf("object %q not found", args[0])
					}
					pl.SetRenameBuffer(args[1])
					return pl.CommitRename(), nil
				})
			},
		},
		&cobra.Command{
			Use:   "select <object-id>",
			Short: "Select an object",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return panelEdit(cmd, func(pl *layers.Panel) (bool, error) {
					pl.SelectOnly(args[0])
					return true, nil
				})
			},
		},
	)
	return cmd
}
