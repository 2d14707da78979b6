/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cardstudio/internal/domain"
)

// BundleOptions controls the share bundle export.
type BundleOptions struct {
	// Scale of the page images; 0 means 1.
	Scale float64
	// Pages lists page ids to include; empty includes all pages.
	Pages []string
}

// bundleManifest describes the contents of a bundle.
type bundleManifest struct {
	Project    string    `json:"project"`
	Name       string    `json:"name"`
	PageCount  int       `json:"pageCount"`
	Pages      []string  `json:"pages"`
	ExportedAt time.Time `json:"exportedAt"`
}

// ExportBundle packages page PNGs, page SVGs, the project document and a
// manifest into a ZIP archive at outPath. A .zip extension is enforced.
func ExportBundle(p domain.Project, projectJSON []byte, outPath string, opt BundleOptions) error {
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	pages := pagesByID(p, opt.Pages)
	pad := len(fmt.Sprint(len(pages)))
	names := make([]string, 0, len(pages))
	for i, pg := range pages {
		img, err := RenderPage(pg, opt.Scale)
		if err != nil {
			return err
		}
		data, err := EncodePNG(img)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("pages/%0*d.png", pad, i+1)
		if err := addZipFile(zw, name, data); err != nil {
			return fmt.Errorf("zip add image: %w", err)
		}
		svg, err := ExportSVG(p, pg.ID)
		if err != nil {
			return err
		}
		if err := addZipFile(zw, fmt.Sprintf("pages/%0*d.svg", pad, i+1), svg); err != nil {
			return fmt.Errorf("zip add svg: %w", err)
		}
		names = append(names, name)
	}
	if len(projectJSON) > 0 {
		if err := addZipFile(zw, "project.json", projectJSON); err != nil {
			return fmt.Errorf("zip add project: %w", err)
		}
	}
	manifest, err := json.MarshalIndent(bundleManifest{
		Project:    p.ID,
		Name:       p.Name,
		PageCount:  len(pages),
		Pages:      names,
		ExportedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}
	if err := addZipFile(zw, "manifest.json", manifest); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create zip: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
