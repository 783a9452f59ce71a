// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/walteh/dropzip/cmd/dropzip/commands"
	"github.com/walteh/dropzip/cmd/dropzip/opts"
	"github.com/walteh/dropzip/pkg/config"
	"github.com/walteh/dropzip/pkg/errs"
	"github.com/walteh/dropzip/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// configNames are tried in order in the working directory, then in the user
// config directory
var configNames = []string{".dropzip.hcl", ".dropzip.yaml", ".dropzip.yml", ".dropzip.toml", ".dropzip.json"}

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	configFile string
	debug      bool
	json       bool
	dest       string
	overwrite  bool
	name       string
	exclude    []string
}

// newRootCmd wires the command tree. stdout and stderr are parameters so
// tests can capture output.
func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *opts.RootOpts) {
	flags := &rootFlags{}
	rootOpts := &opts.RootOpts{Stdout: stdout, Stderr: stderr}

	cmd := &cobra.Command{
		Use:   "dropzip",
		Short: "Bundle dropped files into a zip and copy it to a destination",
		Long: `dropzip zips the files and folders handed to it, strips metadata entries
like __MACOSX and .DS_Store, and copies the archive into a configured
destination folder.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), flags, cmd)
			if err != nil {
				return err
			}

			logger, err := log.New(log.Options{
				Console:    stderr,
				Debug:      flags.debug,
				Quiet:      !flags.debug,
				JSON:       flags.json,
				File:       cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
			})
			if err != nil {
				return errors.Errorf("setting up logging: %w", err)
			}
			rootOpts.Logger = logger
			cmd.SetContext(logger.WithContext(cmd.Context()))

			rootOpts.Config = cfg
			rootOpts.JSON = flags.json
			rootOpts.Interactive = !flags.debug && isTerminal(stdout)

			logger.Debug().Str("config", cfg.String()).Msg("configuration loaded")
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	addRootFlags(cmd, flags)

	cmd.AddCommand(
		commands.NewBundleCmd(rootOpts),
		commands.NewClickCmd(rootOpts),
		commands.NewWatchCmd(rootOpts),
		commands.NewFilterCmd(rootOpts),
		commands.NewLsCmd(rootOpts),
		newVersionCmd(rootOpts),
	)

	return cmd, rootOpts
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, f *rootFlags) {
	cmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "config file path (default: .dropzip.{hcl,yaml,toml,json})")
	cmd.PersistentFlags().BoolVarP(&f.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&f.json, "json", false, "write events as JSON lines")
	cmd.PersistentFlags().StringVar(&f.dest, "dest", "", "destination directory, overrides destination.dir")
	cmd.PersistentFlags().BoolVar(&f.overwrite, "overwrite", false, "replace an existing archive in the destination")
	cmd.PersistentFlags().StringVar(&f.name, "name", "", "archive name, overrides archive.name")
	cmd.PersistentFlags().StringSliceVar(&f.exclude, "exclude", nil, "exclusion patterns, overrides archive.exclude")
}

// loadConfig reads the config file if there is one and applies flag overrides.
// Validation runs only once a destination is known, so filter and ls work
// without one.
func loadConfig(ctx context.Context, f *rootFlags, cmd *cobra.Command) (*config.Config, error) {
	path := f.configFile
	if path == "" {
		path = findConfig()
	}

	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadFile(ctx, path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrInvalidInput, err, "loading %s", path)
		}
		cfg = loaded
	}

	flagSet := cmd.Flags()
	if flagSet.Changed("dest") {
		cfg.Destination.Dir = f.dest
	}
	if flagSet.Changed("overwrite") {
		cfg.Destination.Overwrite = f.overwrite
	}
	if flagSet.Changed("name") {
		cfg.Archive.Name = f.name
	}
	if flagSet.Changed("exclude") {
		cfg.Archive.Exclude = append([]string{}, f.exclude...)
	}

	if cfg.Destination.Dir != "" {
		if err := cfg.Validate(); err != nil {
			return nil, errs.Wrap(errs.ErrInvalidInput, err, "validating config")
		}
		return cfg, nil
	}

	if cfg.Log.File != "" {
		file, err := config.ExpandPath(cfg.Log.File)
		if err != nil {
			return nil, errs.Wrap(errs.ErrInvalidInput, err, "log.file")
		}
		cfg.Log.File = file
	}
	return cfg, nil
}

// findConfig returns the first config file found, or ""
func findConfig() string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "dropzip"))
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
