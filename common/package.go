// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package common

import (
	"fmt"

	"github.com/jwalton/gchalk"
)

// Origin is where a resolved package is fetched from. It is one of
// RegistryOrigin, PathOrigin, GitOrigin or URLOrigin.
type Origin interface {
	// Kind is a short human readable name of the origin.
	Kind() string
	origin()
}

// RegistryOrigin is a package published to a registry index.
type RegistryOrigin struct {
	Index string
}

// PathOrigin is a package living on the local filesystem, usually another
// member of the workspace.
type PathOrigin struct{}

// GitOrigin is a package checked out from a git repository.
type GitOrigin struct {
	Protocol  string
	URL       string
	Reference GitReference
}

// URLOrigin is any other kind of source, fetched from URL as-is.
type URLOrigin struct {
	URL string
}

func (RegistryOrigin) Kind() string { return "registry" }
func (PathOrigin) Kind() string     { return "path" }
func (GitOrigin) Kind() string      { return "git" }
func (URLOrigin) Kind() string      { return "url" }

func (RegistryOrigin) origin() {}
func (PathOrigin) origin()     {}
func (GitOrigin) origin()      {}
func (URLOrigin) origin()      {}

type RefKind int

const (
	DefaultBranch RefKind = iota
	Branch
	Tag
	Rev
)

// GitReference is the symbolic reference a git dependency was requested
// with. Name is empty for DefaultBranch.
type GitReference struct {
	Kind RefKind
	Name string
}

func (r GitReference) String() string {
	switch r.Kind {
	case Branch:
		return "branch=" + r.Name
	case Tag:
		return "tag=" + r.Name
	case Rev:
		return "rev=" + r.Name
	default:
		return "default branch"
	}
}

// Package is a single entry of the resolved dependency set.
type Package struct {
	Name    string
	Version string
	Origin  Origin
	// Source is the raw source id the origin was parsed from.
	Source string
	// Precise is the exact commit a git dependency was locked to.
	Precise string
	// Dependencies as written in the lockfile: `name`, `name version` or
	// `name version (source)`.
	Dependencies []string
}

// Show is the toString method for a package.
//
// When `color` is true, the origin is shown in gray color for easier viewing.
func (p *Package) Show(color bool) string {
	if p.Origin == nil {
		return fmt.Sprintf("%s v%s", p.Name, p.Version)
	} else if color {
		return fmt.Sprintf("%s v%s ", p.Name, p.Version) + gchalk.Gray(fmt.Sprintf("(%s)", p.Origin.Kind()))
	} else {
		return fmt.Sprintf("%s v%s (%s)", p.Name, p.Version, p.Origin.Kind())
	}
}
