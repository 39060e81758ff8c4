// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"time"

	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/recipe"
	st "github.com/GZGavinZhao/bitbaker/state"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	quiet        bool
	verbose      bool
	manifestPath string
	pkgName      string
	prune        bool
	reproducible bool
)

func projectFlagsInit(cmd *cobra.Command) {
	cmd.Flags().StringVar(&manifestPath, "manifest-path", ".", "path to Cargo.toml, or a directory inside the package")
	cmd.Flags().StringVarP(&pkgName, "package", "p", "", "workspace member to generate the recipe for")
	cmd.Flags().BoolVar(&prune, "prune", false, "leave out locked packages the package does not depend on")
	cmd.Flags().BoolVarP(&reproducible, "reproducible", "R", false, "pin git dependencies to their exact locked revisions")
}

// loadProject loads the selected package, with command line flags taking
// precedence over its config file.
func loadProject(cmd *cobra.Command) (project *st.Project, err error) {
	if project, err = st.LoadProject(manifestPath, pkgName); err != nil {
		return
	}

	cfg := &project.Config
	if cmd.Flags().Changed("prune") {
		cfg.Prune = prune
	}
	if cmd.Flags().Changed("reproducible") {
		cfg.Reproducible = reproducible
	}

	if cfg.Prune {
		var removed int
		if removed, err = project.Prune(); err != nil {
			return
		}
		waterlog.Debugf("Pruned %d packages the package does not depend on\n", removed)
	}

	return
}

func sourceOptions(project *st.Project) (opts recipe.SourceOptions, err error) {
	opts.Reproducible = project.Config.Reproducible
	opts.Scheme = project.Config.Registry.Scheme
	opts.Ignore, err = project.Config.IgnorePatterns()
	return
}

// newSpinner returns a spinner on stderr, or nil when log output would
// interleave with it.
func newSpinner(msg string) *spinner.Spinner {
	if quiet || verbose {
		return nil
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Prefix = " "
	s.Suffix = "  " + msg
	s.Start()
	return s
}

func stopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}
