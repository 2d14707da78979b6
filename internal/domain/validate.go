/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a project and reports every violation.
func (p *Project) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("project id is empty"))
	}
	if len(p.Pages) == 0 {
		errs = append(errs, errors.New("project has no pages"))
	}
	seenPages := map[string]bool{}
	for i := range p.Pages {
		pg := &p.Pages[i]
		if pg.ID == "" {
			errs = append(errs, fmt.Errorf("page %d: empty id", i))
		} else if seenPages[pg.ID] {
			errs = append(errs, fmt.Errorf("page %q: duplicate id", pg.ID))
		}
		seenPages[pg.ID] = true
		if pg.Width <= 0 || pg.Height <= 0 {
			errs = append(errs, fmt.Errorf("page %q: size %dx%d must be positive", pg.ID, pg.Width, pg.Height))
		}
		seenObjs := map[string]bool{}
		Walk(pg.Objects, func(o *Object, _ int) {
			switch {
			case o.ID == "":
				errs = append(errs, fmt.Errorf("page %q: object with empty id", pg.ID))
			case seenObjs[o.ID]:
				errs = append(errs, fmt.Errorf("page %q: duplicate object id %q", pg.ID, o.ID))
			}
			seenObjs[o.ID] = true
			if !o.Kind.Valid() {
				errs = append(errs, fmt.Errorf("object %q: unknown type %q", o.ID, o.Kind))
			}
			if !o.IsGroup() && len(o.Children) > 0 {
				errs = append(errs, fmt.Errorf("object %q: only groups may have children", o.ID))
			}
		})
	}
	cur := p.CurrentPage()
	if cur == nil {
		errs = append(errs, fmt.Errorf("selectedPageId %q does not resolve", p.SelectedPageID))
	} else if sel := p.SelectedObject(); sel != "" && FindObject(cur.Objects, sel) == nil {
		errs = append(errs, fmt.Errorf("selectedObjectId %q is not on the selected page", sel))
	}
	return errors.Join(errs...)
}
