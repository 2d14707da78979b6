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
	"path/filepath"

	"github.com/spf13/cobra"

	"cardstudio/internal/editor"
	"cardstudio/internal/export"
	"cardstudio/internal/telemetry"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		out     string
		pages   []string
		scale   float64
		bleed   float64
		guides  bool
		preset  string
		formats []string
	)
	cmd := &cobra.Command{
		Use:       "export <json|svg|pdf|png|zip|batch>",
		Short:     "Export the project",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"json", "svg", "pdf", "png", "zip", "batch"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := args[0]
			return a.view(cmd.Context(), func(ed *editor.Editor) error {
				p := ed.Project()
				var written []string
				switch format {
				case "json":
					data, err := ed.Export()
					if err != nil {
						return err
					}
					if out == "" || out == "-" {
						_, err = a.out.Write(append(data, '\n'))
						return err
					}
					if err := os.WriteFile(out, data, 0o644); err != nil {
						return err
					}
					written = []string{out}
				case "svg":
					if out == "" || out == "-" {
						data, err := export.ExportSVG(p, a.pageID)
						if err != nil {
							return err
						}
						_, err = a.out.Write(data)
						return err
					}
					paths, err := export.ExportSVGPages(p, out, pages)
					if err != nil {
						return err
					}
					written = paths
				case "pdf":
					path := defaultOut(out, "card.pdf")
					if err := export.ExportPDFFile(p, path, export.PDFOptions{Bleed: bleed, IncludeGuides: guides, Pages: pages}); err != nil {
						return err
					}
					written = []string{path}
				case "png":
					paths, err := export.ExportPNGPages(p, defaultOut(out, "."), export.PNGOptions{Scale: scale, Pages: pages})
					if err != nil {
						return err
					}
					written = paths
				case "zip":
					data, err := ed.Export()
					if err != nil {
						return err
					}
					path := defaultOut(out, "card.zip")
					if err := export.ExportBundle(p, data, path, export.BundleOptions{Scale: scale, Pages: pages}); err != nil {
						return err
					}
					written = []string{path}
				case "batch":
					data, err := ed.Export()
					if err != nil {
						return err
					}
					opt := export.BatchOptions{
						Preset:  export.PresetName(preset),
						Formats: formats,
						Pages:   pages,
						Scale:   scale,
						OutDir:  defaultOut(out, "exports"),
					}
					if cmd.Flags().Changed("guides") {
						opt.IncludeGuides = &guides
					}
					paths, err := export.BatchExport(p, data, opt)
					if err != nil {
						return err
					}
					written = paths
				default:
					return fmt.Errorf("unknown export format %q", format)
				}
				telemetry.Event("exported", map[string]any{"format": format, "files": len(written)})
				for _, w := range written {
					a.printf("%s\n", w)
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "", "output file or directory")
	f.StringSliceVar(&pages, "pages", nil, "page ids to export (default: all)")
	f.Float64Var(&scale, "scale", 0, "raster scale (default: 1, or the preset's)")
	f.Float64Var(&bleed, "bleed", 0, "pdf bleed in points")
	f.BoolVar(&guides, "guides", false, "draw trim guides in pdf output")
	f.StringVar(&preset, "preset", string(export.PresetWeb), "batch preset: web or print")
	f.StringSliceVar(&formats, "formats", nil, "batch formats: pdf, png, svg, zip")
	return cmd
}

func defaultOut(out, def string) string {
	if out == "" {
		return def
	}
	return filepath.Clean(out)
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a project file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			ed := a.newEditor()
			if err := ed.Import(data); err != nil {
				return err
			}
			if err := ed.Save(ctx, s); err != nil {
				return err
			}
			a.printf("%s\n", ed.Project().ID)
			return nil
		},
	}
}
