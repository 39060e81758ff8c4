// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/common"
	"github.com/GZGavinZhao/bitbaker/recipe"
	"github.com/GZGavinZhao/bitbaker/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	dotPath    string
	showDigest bool
	showExtras bool

	cmdSources = &cobra.Command{
		Use:   "sources",
		Short: "Show how every locked package of a Cargo package is fetched",
		Long: `Show the SRC_URI line generated for every package in the Cargo.lock of the
workspace, without writing a recipe.

Packages marked [-] are part of the workspace and never fetched, packages
marked [i] match an ignore pattern of bitbaker.yml.`,
		Run:  runSources,
		Args: cobra.NoArgs,
	}
)

func init() {
	projectFlagsInit(cmdSources)
	cmdSources.Flags().StringVar(&dotPath, "dot", "", "store the dependency graph at the specified location in the DOT format")
	cmdSources.Flags().BoolVar(&showDigest, "digest", false, "print a digest of the SRC_URI list, to tell whether a recipe is outdated")
	cmdSources.Flags().BoolVarP(&showExtras, "extras", "e", false, "also show the SRCREV lines of git dependencies")
}

func runSources(cmd *cobra.Command, _ []string) {
	project, err := loadProject(cmd)
	if err != nil {
		waterlog.Fatalf("Failed to load the package: %s\n", err)
	}

	opts, err := sourceOptions(project)
	if err != nil {
		waterlog.Fatalf("Invalid config: %s\n", err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	for _, pkg := range project.Packages() {
		if pkg.Name == project.Metadata.Name {
			continue
		}

		if opts.Ignored(pkg.Name) {
			fmt.Printf("%s %s\n", yellow("[i]"), pkg.Show(true))
			continue
		}

		uri, extras, err := recipe.ClassifyPackage(&pkg, opts)
		if err != nil {
			waterlog.Fatalf("Failed to classify %s: %s\n", pkg.Name, err)
		}

		if uri == "" {
			fmt.Printf("%s %s\n", faint("[-]"), pkg.Show(true))
			continue
		}

		fmt.Printf("%s %s\n    %s\n", green("[+]"), pkg.Show(true), strings.TrimSuffix(strings.TrimSpace(uri), " \\"))
		if showExtras {
			for _, extra := range extras {
				fmt.Printf("    %s\n", faint(extra))
			}
		}
	}

	if showDigest {
		sources, err := recipe.Classify(project.Metadata.Name, project.Packages(), opts)
		if err != nil {
			waterlog.Fatalf("Failed to classify packages: %s\n", err)
		}
		waterlog.Goodf("Digest: %s\n", utils.Digest(sources.SrcURIs))
	}

	if dotPath != "" {
		if err := writeDOT(dotPath, project.Packages()); err != nil {
			waterlog.Fatalf("Failed to write the dependency graph: %s\n", err)
		}
		waterlog.Goodf("Wrote: %s\n", dotPath)
	}
}

func writeDOT(path string, pkgs []common.Package) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err = common.WriteDOT(file, pkgs); err != nil {
		return err
	}
	return file.Close()
}
