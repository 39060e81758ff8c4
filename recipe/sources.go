// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/common"
	"github.com/GZGavinZhao/bitbaker/config"
	"github.com/GZGavinZhao/bitbaker/vcs"
	mapset "github.com/deckarep/golang-set/v2"
)

// AutoRev makes BitBake resolve the latest revision of a branch.
const AutoRev = "${AUTOREV}"

var fullRev = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

type SourceOptions struct {
	// Pin git dependencies to the exact revision in the lockfile.
	Reproducible bool
	// Scheme of registry fetch lines, config.DefaultScheme if empty.
	Scheme string
	// Packages matching any of these get no fetch line.
	Ignore []*regexp.Regexp
}

// Sources is the classified dependency set. SrcURIs are sorted.
type Sources struct {
	SrcURIs []string
	Extras  []string
}

// Classify turns every resolved package except the root package `rootName`
// into a SRC_URI line, plus the SRCREV and search path lines git
// dependencies need.
func Classify(rootName string, pkgs []common.Package, opts SourceOptions) (res Sources, err error) {
	gitNames := mapset.NewThreadUnsafeSet[string]()

	for _, pkg := range pkgs {
		if pkg.Name == rootName {
			continue
		}

		if opts.Ignored(pkg.Name) {
			waterlog.Debugf("Classify: ignoring %s\n", pkg.Show(false))
			continue
		}

		var uri string
		var extras []string
		if uri, extras, err = ClassifyPackage(&pkg, opts); err != nil {
			return
		}

		if _, isGit := pkg.Origin.(common.GitOrigin); isGit && !gitNames.Add(pkg.Name) {
			waterlog.Warnf("More than one git dependency is named %s, their SRCREV lines collide\n", pkg.Name)
		}

		if uri != "" {
			res.SrcURIs = append(res.SrcURIs, uri)
		}
		res.Extras = append(res.Extras, extras...)
	}

	slices.Sort(res.SrcURIs)
	return
}

// ClassifyPackage returns the SRC_URI line of `pkg` and the extra lines it
// needs. The line is empty for path packages, which are never fetched.
func ClassifyPackage(pkg *common.Package, opts SourceOptions) (uri string, extras []string, err error) {
	scheme := opts.Scheme
	if scheme == "" {
		scheme = config.DefaultScheme
	}

	switch origin := pkg.Origin.(type) {
	case common.RegistryOrigin:
		uri = fmt.Sprintf("    %s://%s/%s/%s \\\n", scheme, origin.Index, pkg.Name, pkg.Version)
	case common.PathOrigin:
		// part of what is being packaged
		waterlog.Debugf("Classify: skipping path dependency %s\n", pkg.Name)
	case common.GitOrigin:
		var rev string
		if rev, err = gitRev(pkg, origin, opts.Reproducible); err != nil {
			return
		}

		uri = "    " + vcs.ToBitbakeURL(origin.URL, pkg.Name, vcs.Git) + " \\\n"
		extras = []string{
			fmt.Sprintf("SRCREV_FORMAT .= \"_%s\"", pkg.Name),
			fmt.Sprintf("SRCREV_%s = \"%s\"", pkg.Name, rev),
			fmt.Sprintf("EXTRA_OECARGO_PATHS += \"${WORKDIR}/%s\"", pkg.Name),
		}
	case common.URLOrigin:
		uri = fmt.Sprintf("    %s \\\n", origin.URL)
	default:
		err = &UnknownOriginError{Name: pkg.Name, Origin: pkg.Origin}
	}

	return
}

// gitRev selects the SRCREV of a git dependency.
func gitRev(pkg *common.Package, origin common.GitOrigin, reproducible bool) (string, error) {
	if reproducible && pkg.Precise != "" {
		return pkg.Precise, nil
	}

	ref := origin.Reference
	switch ref.Kind {
	case common.Tag:
		return ref.Name, nil
	case common.Rev:
		if fullRev.MatchString(ref.Name) {
			return ref.Name, nil
		}
		if pkg.Precise != "" {
			return pkg.Precise, nil
		}
		return "", &AbbreviatedRevError{Name: pkg.Name, Rev: ref.Name}
	case common.Branch:
		if ref.Name == "master" {
			return AutoRev, nil
		}
		return ref.Name, nil
	default:
		return AutoRev, nil
	}
}

// Ignored reports whether the package `name` matches an ignore pattern.
func (opts SourceOptions) Ignored(name string) bool {
	for _, re := range opts.Ignore {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
