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
	"strings"

	"github.com/spf13/cobra"

	"cardstudio/internal/clipboard"
	"cardstudio/internal/editor"
)

// readSystem is replaced in tests.
var readSystem = clipboard.ReadSystem

// systemMirror is replaced in tests.
var systemMirror clipboard.Mirror = clipboard.SystemMirror{}

func newClipboardCmds(a *app) []*cobra.Command {
	copyCmd := &cobra.Command{
		Use:   "copy <object-id>",
		Short: "Copy an object to the system clipboard as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := a.load(cmd.Context(), editor.WithClipboardMirror(systemMirror))
			if err != nil {
				return err
			}
			ed.SelectObject(args[0])
			if o := ed.SelectedObject(); o == nil || o.ID != args[0] {
				return fmt.Errorf("object %q not found", args[0])
			}
			if !ed.CopySelection() {
				return fmt.Errorf("nothing copied")
			}
			return nil
		},
	}

	pasteCmd := &cobra.Command{
		Use:   "paste",
		Short: "Paste objects from the system clipboard onto the current page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSystem()
			if err != nil {
				return fmt.Errorf("read clipboard: %w", err)
			}
			objs, err := clipboard.Decode(text)
			if err != nil {
				return err
			}
			return a.edit(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				ed.SetClipboard(objs)
				ids := ed.Paste()
				if len(ids) == 0 {
					return false, fmt.Errorf("nothing to paste")
				}
				a.printf("%s\n", strings.Join(ids, "\n"))
				return true, nil
			})
		},
	}
	return []*cobra.Command{copyCmd, pasteCmd}
}
