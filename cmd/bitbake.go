// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/recipe"
	st "github.com/GZGavinZhao/bitbaker/state"
	"github.com/GZGavinZhao/bitbaker/vcs"
	"github.com/spf13/cobra"
)

var (
	legacyOverrides bool
	outputDir       string

	cmdBitbake = &cobra.Command{
		Use:   "bitbake",
		Short: "Generate a BitBake recipe for a Cargo package",
		Long: `Generate a BitBake recipe for a Cargo package from its Cargo.toml and the
Cargo.lock of its workspace.

For example: bitbaker bitbake --manifest-path ../ripgrep -R

Two files are written: <name>_<version>.bb with the package metadata and
<name>_<version>.inc with the SRC_URI of every locked dependency.`,
		Run:  runBitbake,
		Args: cobra.NoArgs,
	}
)

func init() {
	projectFlagsInit(cmdBitbake)
	cmdBitbake.Flags().BoolVarP(&legacyOverrides, "legacy-overrides", "l", false, "use the legacy PV_append override syntax")
	cmdBitbake.Flags().StringVarP(&outputDir, "output", "o", ".", "directory to write the recipe into")
}

func runBitbake(cmd *cobra.Command, _ []string) {
	s := newSpinner("Reading the workspace")
	project, err := loadProject(cmd)
	if err != nil {
		stopSpinner(s)
		if st.IsNotFound(err) {
			waterlog.Errorln("Run bitbaker inside a Cargo package, or point --manifest-path at one")
		}
		waterlog.Fatalf("Failed to load the package: %s\n", err)
	}

	if cmd.Flags().Changed("legacy-overrides") {
		project.Config.LegacyOverrides = legacyOverrides
	}

	if s != nil {
		s.Suffix = "  Probing the upstream repository"
	}
	repo := vcs.ProbeOrDefault(project.Root)
	stopSpinner(s)
	waterlog.Debugf("Upstream repository: %s at %s (tag: %t)\n", repo.URI, repo.Rev, repo.Tag)

	opts := recipe.Options{
		LegacyOverrides:  project.Config.LegacyOverrides,
		GeneratorVersion: Version,
	}
	if opts.SourceOptions, err = sourceOptions(project); err != nil {
		waterlog.Fatalf("Invalid config: %s\n", err)
	}

	r, err := recipe.Assemble(recipe.Input{
		Metadata: project.Metadata,
		Root:     project.Root,
		RelDir:   project.RelDir,
		Packages: project.Packages(),
		Repo:     repo,
	}, opts)
	if err != nil {
		waterlog.Fatalf("Failed to generate the recipe: %s\n", err)
	}

	tmpls, err := recipe.LoadTemplates(project.Config.Templates)
	if err != nil {
		waterlog.Fatalf("Failed to load templates: %s\n", err)
	}

	if _, err = r.Write(outputDir, tmpls); err != nil {
		waterlog.Fatalf("Failed to write the recipe: %s\n", err)
	}
}
