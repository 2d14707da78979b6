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
	"path/filepath"
	"strings"

	"cardstudio/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// printBleed is the bleed margin used by the print preset, in points (1/8 inch).
const printBleed = 9

// BatchOptions controls batch export across several formats.
//
// Outputs go to OutDir/<preset>/: pdf/card.pdf, png/page-N.png, svg/page-N.svg
// and bundle/card.zip.
type BatchOptions struct {
	Preset PresetName
	// Formats allowed: pdf, png, svg, zip. Empty means the preset's defaults.
	Formats       []string
	Pages         []string
	Scale         float64 // raster scale override when > 0
	IncludeGuides *bool   // overrides the preset's default for guides
	OutDir        string
}

// BatchExport runs exports according to the given preset and returns the files written.
func BatchExport(p domain.Project, projectJSON []byte, opt BatchOptions) ([]string, error) {
	if len(p.Pages) == 0 {
		return nil, fmt.Errorf("project %s has no pages", p.ID)
	}
	if opt.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	preset := opt.Preset
	if preset == "" {
		preset = PresetWeb
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(preset)
	}
	guides := presetIncludeGuides(preset)
	if opt.IncludeGuides != nil {
		guides = *opt.IncludeGuides
	}
	scale := presetScale(preset)
	if opt.Scale > 0 {
		scale = opt.Scale
	}
	base := filepath.Join(opt.OutDir, string(preset))

	var written []string
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "pdf":
			out := filepath.Join(base, "pdf", "card.pdf")
			po := PDFOptions{IncludeGuides: guides, Pages: opt.Pages}
			if preset == PresetPrint {
				po.Bleed = printBleed
			}
			if err := ExportPDFFile(p, out, po); err != nil {
				return written, fmt.Errorf("pdf: %w", err)
			}
			written = append(written, out)
		case "png":
			paths, err := ExportPNGPages(p, filepath.Join(base, "png"), PNGOptions{Scale: scale, Pages: opt.Pages})
			written = append(written, paths...)
			if err != nil {
				return written, fmt.Errorf("png: %w", err)
			}
		case "svg":
			paths, err := ExportSVGPages(p, filepath.Join(base, "svg"), opt.Pages)
			written = append(written, paths...)
			if err != nil {
				return written, fmt.Errorf("svg: %w", err)
			}
		case "zip":
			out := filepath.Join(base, "bundle", "card.zip")
			if err := ExportBundle(p, projectJSON, out, BundleOptions{Scale: scale, Pages: opt.Pages}); err != nil {
				return written, fmt.Errorf("zip: %w", err)
			}
			written = append(written, out)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg", "zip"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetIncludeGuides(p PresetName) bool {
	return p == PresetPrint
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}
