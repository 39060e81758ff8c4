// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"fmt"
	"strings"

	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/cargo"
	"github.com/GZGavinZhao/bitbaker/common"
	"github.com/GZGavinZhao/bitbaker/license"
	"github.com/GZGavinZhao/bitbaker/utils"
	"github.com/GZGavinZhao/bitbaker/vcs"
)

// Input is everything a recipe is made from.
type Input struct {
	Metadata cargo.Metadata
	// Package directory, where license files are searched.
	Root string
	// Package directory relative to the workspace root.
	RelDir   string
	Packages []common.Package
	Repo     vcs.ProjectRepo
}

type Options struct {
	SourceOptions
	// Use `PV_append` instead of `PV:append`.
	LegacyOverrides  bool
	GeneratorVersion string
}

// Recipe holds the values substituted into the recipe templates.
type Recipe struct {
	Name     string
	Version  string
	Summary  string
	Homepage string
	License  string
	// LIC_FILES_CHKSUM lines.
	LicFiles []string
	SrcURIs  []string
	// SRCREV and EXTRA_OECARGO_PATHS lines of git dependencies.
	Extras      []string
	IncludePath string
	RelDir      string
	ProjectURI  string
	ProjectRev  string
	// Empty when the project revision is a tag.
	PVAppend         string
	GeneratorVersion string
}

func Assemble(in Input, opts Options) (r *Recipe, err error) {
	md := in.Metadata
	r = &Recipe{
		Name:             md.Name,
		Version:          md.Version,
		RelDir:           in.RelDir,
		ProjectURI:       in.Repo.URI,
		ProjectRev:       in.Repo.Rev,
		GeneratorVersion: opts.GeneratorVersion,
	}

	if strings.Contains(md.Name, "_") {
		waterlog.Warnf("Package name %s contains an underscore\n", md.Name)
	}

	sources, err := Classify(md.Name, in.Packages, opts.SourceOptions)
	if err != nil {
		return nil, err
	}
	r.SrcURIs = sources.SrcURIs
	r.Extras = sources.Extras

	if md.Description != "" {
		r.Summary = strings.ReplaceAll(strings.TrimSpace(md.Description), "\n", " \\\n")
	} else {
		waterlog.Warnln("No package.description set in your Cargo.toml, using package.name")
		r.Summary = md.Name
	}

	if r.Homepage, err = homepage(&md); err != nil {
		return nil, err
	}

	lic := licenseExpr(&md)
	licenses := strings.Split(lic, "/")
	single := len(licenses) == 1
	for _, name := range licenses {
		if line := license.File(in.Root, in.RelDir, name, single); line != "" {
			r.LicFiles = append(r.LicFiles, "    "+line)
		}
	}
	r.License = strings.Join(utils.SplitTrim(lic, "/"), " | ")

	// Without a tag the version alone does not identify the source, which
	// would leave stale sstate entries valid.
	if !in.Repo.Tag && len(in.Repo.Rev) > 10 {
		key := "PV:append"
		if opts.LegacyOverrides {
			key = "PV_append"
		}
		r.PVAppend = fmt.Sprintf("%s = \".AUTOINC+%s\"", key, in.Repo.Rev[:10])
	}

	r.IncludePath = r.baseName() + ".inc"
	return
}

func (r *Recipe) baseName() string {
	return fmt.Sprintf("%s_%s", r.Name, r.Version)
}

func homepage(md *cargo.Metadata) (string, error) {
	if md.Homepage != "" {
		return strings.TrimSpace(md.Homepage), nil
	}

	waterlog.Warnln("No package.homepage set in your Cargo.toml, trying package.repository")
	if md.Repository != "" {
		return strings.TrimSpace(md.Repository), nil
	}

	return "", ErrNoHomepage
}

func licenseExpr(md *cargo.Metadata) string {
	if md.License != "" {
		return md.License
	}

	waterlog.Warnln("No package.license set in your Cargo.toml, trying package.license-file")
	if md.LicenseFile != "" {
		return md.LicenseFile
	}

	waterlog.Warnln("No package.license-file set in your Cargo.toml")
	waterlog.Warnf("Assuming %s license\n", license.Closed)
	return license.Closed
}
