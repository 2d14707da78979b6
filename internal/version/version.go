/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version exposes build identification for cardstudio binaries.
package version

import "runtime/debug"

// Version is overridden at build time via -ldflags "-X cardstudio/internal/version.Version=v1.2.3".
var Version = "dev"

// Commit is the VCS revision, filled from build info when not set via ldflags.
var Commit = ""

// String returns a human-readable version line.
func String() string {
	c := Commit
	if c == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					c = s.Value[:7]
				}
			}
		}
	}
	if c == "" {
		return "cardstudio " + Version
	}
	return "cardstudio " + Version + " (" + c + ")"
}
