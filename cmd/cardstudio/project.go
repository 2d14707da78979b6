/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cardstudio/internal/editor"
	"cardstudio/internal/navigator"
	"cardstudio/internal/storage"
	"cardstudio/internal/telemetry"
)

type checkpointLister interface {
	ListCheckpoints(ctx context.Context, projectID string, limit int) ([]storage.Checkpoint, error)
}

func newProjectCmds(a *app) []*cobra.Command {
	newCmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a project with one empty page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			ed := a.newEditor()
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				p := ed.Project()
				p.Name = strings.TrimSpace(args[0])
				ed = a.newEditor(editor.WithProject(p))
			}
			if err := ed.Save(ctx, s); err != nil {
				return err
			}
			p := ed.Project()
			telemetry.Event("project_created", nil)
			a.printf("%s\n", p.ID)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored project ids",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			ids, err := storage.ListProjects(cmd.Context(), s)
			if err != nil {
				return err
			}
			for _, id := range ids {
				a.printf("%s\n", id)
			}
			return nil
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the project and its pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd.Context(), func(ed *editor.Editor) error {
				p := ed.Project()
				a.printf("Project: %s (%s)\n", p.Name, p.ID)
				a.printf("Created: %s\n", p.Metadata.CreatedAt.Format("2006-01-02 15:04"))
				a.printf("Updated: %s\n", p.Metadata.UpdatedAt.Format("2006-01-02 15:04"))
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "\tINDEX\tID\tNAME\tSIZE\tOBJECTS")
				for _, pg := range navigator.New(ed, nil, 0).Pages() {
					mark := ""
					if pg.Selected {
						mark = "*"
					}
					_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%dx%d\t%d\n", mark, pg.Index+1, pg.ID, pg.Name, pg.Width, pg.Height, pg.Objects)
				}
				return tw.Flush()
			})
		},
	}

	var limit int
	checkpointsCmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List saved checkpoints (sqlite and postgres storage)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			cl, ok := s.(checkpointLister)
			if !ok {
				return fmt.Errorf("storage type %q keeps no checkpoints", a.cfg.Storage.Type)
			}
			id, err := a.resolveProject(ctx, s)
			if err != nil {
				return err
			}
			cps, err := cl.ListCheckpoints(ctx, id, limit)
			if err != nil {
				return err
			}
			for _, cp := range cps {
				a.printf("%d\t%s\t%s\t%d bytes\n", cp.ID, cp.TS.Format("2006-01-02 15:04:05"), cp.Label, len(cp.Blob))
			}
			return nil
		},
	}
	checkpointsCmd.Flags().IntVar(&limit, "limit", 20, "maximum number of checkpoints")

	var thumbWidth int
	thumbsCmd := &cobra.Command{
		Use:   "thumbs",
		Short: "Render page thumbnails and store them as previews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed, s, err := a.load(ctx)
			if err != nil {
				return err
			}
			nav := navigator.New(ed, nil, thumbWidth)
			if err := nav.RefreshThumbnails(); err != nil {
				return err
			}
			// thumbnails are not history, so save explicitly
			if err := ed.Save(ctx, s); err != nil {
				return err
			}
			a.printf("rendered %d thumbnails\n", len(nav.Pages()))
			return nil
		},
	}
	thumbsCmd.Flags().IntVar(&thumbWidth, "width", navigator.DefaultThumbWidth, "thumbnail width in pixels")

	return []*cobra.Command{newCmd, listCmd, infoCmd, checkpointsCmd, thumbsCmd}
}
