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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cardstudio/internal/config"
	"cardstudio/internal/editor"
	applog "cardstudio/internal/log"
	"cardstudio/internal/storage"
	"cardstudio/internal/telemetry"
	"cardstudio/internal/version"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	out io.Writer

	configPath string
	projectID  string
	pageID     string
	envFile    string

	cfg    config.AppConfig
	secret string
	store  storage.Backend
	ed     *editor.Editor
	log    *slog.Logger
}

func newApp(out io.Writer) *app {
	return &app{out: out, log: applog.WithComponent("cli")}
}

// snapshot returns the open project for crash autosave.
func (a *app) snapshot() ([]byte, error) {
	if a.ed == nil {
		return nil, nil
	}
	return a.ed.Export()
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cardstudio",
		Short:         "Edit and export multi-page invitation cards",
		Long:          `CardStudio keeps card projects in the configured store and edits them one command at a time. Every change goes through the editor, so undo history, validation and previews behave exactly as in the interactive app.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: user config dir)")
	root.PersistentFlags().StringVarP(&a.projectID, "project", "p", "", "project id (default: the only stored project)")
	root.PersistentFlags().StringVar(&a.pageID, "page", "", "page id to operate on (default: the selected page)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				a.printf("CardStudio %s\n", version.String())
			},
		},
	)
	root.AddCommand(newProjectCmds(a)...)
	root.AddCommand(newObjectCmds(a)...)
	root.AddCommand(newPageCmd(a), newLayersCmd(a), newExportCmd(a), newImportCmd(a))
	root.AddCommand(newClipboardCmds(a)...)
	return root
}

func (a *app) setup() error {
	// a missing dotenv file is normal
	_ = godotenv.Load(a.envFile)

	var err error
	if a.configPath != "" {
		a.cfg, a.secret, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, a.secret, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applog.Init(applog.Options{
		Level:     a.cfg.Logging.Level,
		Format:    a.cfg.Logging.Format,
		AddSource: a.cfg.Logging.Source,
		File:      a.cfg.Logging.File,
	})
	a.log = applog.WithComponent("cli")
	telemetry.NewDefault(telemetry.FromConfig(a.cfg.Telemetry))
	return nil
}

func (a *app) teardown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close storage failed", slog.Any("err", err))
		}
		a.store = nil
	}
	telemetry.Flush(context.Background())
}

func (a *app) openStore(ctx context.Context) (storage.Backend, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := storage.Open(ctx, a.cfg.Storage, a.secret)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// resolveProject picks the project id from the flag or, failing that, the
// single stored project.
func (a *app) resolveProject(ctx context.Context, s storage.KV) (string, error) {
	if id := strings.TrimSpace(a.projectID); id != "" {
		return id, nil
	}
	ids, err := storage.ListProjects(ctx, s)
	if err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", errors.New("no projects stored; run 'cardstudio new' first")
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%d projects stored; choose one with --project", len(ids))
	}
}

func (a *app) newEditor(opts ...editor.Option) *editor.Editor {
	base := editor.ConfigOptions(a.cfg)
	base = append(base, editor.WithLogger(applog.WithComponent("editor")))
	a.ed = editor.New(append(base, opts...)...)
	return a.ed
}

// load opens the store and the project chosen by --project, then selects
// --page if given.
func (a *app) load(ctx context.Context, opts ...editor.Option) (*editor.Editor, storage.Backend, error) {
	s, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	id, err := a.resolveProject(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	ed := a.newEditor(opts...)
	if err := ed.Load(ctx, s, id); err != nil {
		return nil, nil, err
	}
	if a.pageID != "" && ed.Project().SelectedPageID != a.pageID {
		if !ed.SelectPage(a.pageID) {
			return nil, nil, fmt.Errorf("page %q not found", a.pageID)
		}
	}
	return ed, s, nil
}

// edit loads the project, runs fn and saves the result when fn reports a change.
func (a *app) edit(ctx context.Context, fn func(ed *editor.Editor) (bool, error), opts ...editor.Option) error {
	ed, s, err := a.load(ctx, opts...)
	if err != nil {
		return err
	}
	changed, err := fn(ed)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return ed.Save(ctx, s)
}

// view is edit without saving.
func (a *app) view(ctx context.Context, fn func(ed *editor.Editor) error) error {
	return a.edit(ctx, func(ed *editor.Editor) (bool, error) { return false, fn(ed) })
}
