// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package state

import (
	"fmt"
	"path/filepath"

	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/cargo"
	"github.com/GZGavinZhao/bitbaker/common"
	"github.com/GZGavinZhao/bitbaker/config"
	"github.com/GZGavinZhao/bitbaker/utils"
	"github.com/yourbasic/graph"
)

// Project is the package a recipe is generated for, together with its
// workspace and the resolved dependency set of that workspace.
type Project struct {
	// Manifest of the package itself, never a virtual one.
	Manifest cargo.Manifest
	Metadata cargo.Metadata
	Config   config.BitbakerConfig
	// Directory holding the package manifest.
	Root string
	// Directory holding the workspace manifest and Cargo.lock. Same as Root
	// for a standalone package.
	WorkspaceRoot string
	// Root relative to WorkspaceRoot, empty when they are the same.
	RelDir string

	packages []common.Package
	index    *common.Index
	depGraph *graph.Immutable
}

func (p *Project) Packages() []common.Package {
	return p.packages
}

func (p *Project) DepGraph() *graph.Immutable {
	return p.depGraph
}

// GetPackage returns the resolved package named `name`, or -1 if there is
// none or the name is ambiguous.
func (p *Project) GetPackage(name string) (common.Package, int) {
	idx, ok := p.index.Lookup(name)
	if !ok {
		return common.Package{}, -1
	}
	return p.packages[idx], idx
}

func (p *Project) setPackages(pkgs []common.Package) {
	p.packages = pkgs
	p.index = common.NewIndex(pkgs)
	p.buildGraph()
}

func (p *Project) buildGraph() {
	g := graph.New(len(p.packages))

	for pkgIdx, pkg := range p.packages {
		for _, dep := range pkg.Dependencies {
			depIdx, found := p.index.Lookup(dep)
			if !found {
				waterlog.Debugf("Dependency %s of package %s is not found!\n", dep, pkg.Name)
			} else if pkgIdx != depIdx {
				g.Add(pkgIdx, depIdx)
			}
		}
	}

	p.depGraph = graph.Sort(g)
}

// LoadPackages reads Cargo.lock of the workspace.
func (p *Project) LoadPackages() error {
	lockPath := filepath.Join(p.WorkspaceRoot, cargo.LockfileName)
	pkgs, err := cargo.LoadLockfile(lockPath, p.Config.Registry.IndexName)
	if err != nil {
		return err
	}

	p.setPackages(pkgs)
	return nil
}

// Prune drops every resolved package the project does not depend on, even
// transitively. It returns the number of packages removed.
func (p *Project) Prune() (removed int, err error) {
	_, rootIdx := p.GetPackage(fmt.Sprintf("%s %s", p.Metadata.Name, p.Metadata.Version))
	if rootIdx < 0 {
		err = fmt.Errorf("%s v%s: %w", p.Metadata.Name, p.Metadata.Version, ErrRootNotInLock)
		return
	}

	reachable := utils.Reachable(p.depGraph, rootIdx)

	var kept []common.Package
	for idx, pkg := range p.packages {
		if reachable[idx] {
			kept = append(kept, pkg)
		} else {
			waterlog.Debugf("Prune: dropping %s\n", pkg.Show(false))
		}
	}

	removed = len(p.packages) - len(kept)
	p.setPackages(kept)
	return
}
