// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/cargo"
	"github.com/GZGavinZhao/bitbaker/common"
	"github.com/GZGavinZhao/bitbaker/config"
	"github.com/GZGavinZhao/bitbaker/utils"
)

// LoadProject discovers the package at `manifestPath` (a Cargo.toml, or a
// directory at or below the package) and its workspace, then loads the
// package's config file and the workspace lockfile.
//
// When `pkgName` is not empty, the workspace member with that name is
// selected instead.
func LoadProject(manifestPath, pkgName string) (p *Project, err error) {
	path, err := findManifest(manifestPath)
	if err != nil {
		return
	}

	manifest, err := cargo.LoadManifest(path)
	if err != nil {
		return
	}

	ws, err := findWorkspace(&manifest)
	if err != nil {
		return
	}

	if pkgName != "" && manifest.Name() != pkgName {
		searchRoot := filepath.Dir(manifest.Path)
		if ws != nil {
			searchRoot = filepath.Dir(ws.Path)
		}

		if manifest, err = findMember(searchRoot, pkgName); err != nil {
			return
		}
		if ws, err = findWorkspace(&manifest); err != nil {
			return
		}
	}

	if manifest.IsVirtual() {
		err = fmt.Errorf("%s: %w", manifest.Path, ErrVirtualManifest)
		return
	}

	p = &Project{Manifest: manifest, Root: filepath.Dir(manifest.Path)}
	p.WorkspaceRoot = p.Root
	if ws != nil {
		p.WorkspaceRoot = filepath.Dir(ws.Path)
	}

	if p.Metadata, err = manifest.Metadata(ws); err != nil {
		return
	}

	rel, err := filepath.Rel(p.WorkspaceRoot, p.Root)
	if err != nil {
		err = fmt.Errorf("Unable to find %s relative to the workspace root %s: %w", p.Root, p.WorkspaceRoot, err)
		return
	}
	if rel != "." {
		p.RelDir = filepath.ToSlash(rel)
	}

	cfg, cfgPath, err := config.Find(p.Root)
	if err != nil {
		return
	}
	if cfgPath != "" {
		waterlog.Debugf("LoadProject: using config file %s\n", cfgPath)
	}
	p.Config = cfg

	waterlog.Debugf("LoadProject: package %s in %s, workspace root %s\n", p.Metadata.Name, p.Root, p.WorkspaceRoot)

	err = p.LoadPackages()
	return
}

// findManifest walks upwards from `start` to the nearest Cargo.toml.
func findManifest(start string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(start)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return start, nil
	}

	for dir := start; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, common.ManifestName)
		if utils.PathExists(candidate) {
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	return "", fmt.Errorf("%s: %w", start, ErrNoManifest)
}

// findWorkspace returns the workspace manifest of `m`, or nil when `m` is a
// standalone package.
func findWorkspace(m *cargo.Manifest) (*cargo.Manifest, error) {
	if m.IsWorkspace() {
		return m, nil
	}

	pkgDir := filepath.Dir(m.Path)

	if explicit := m.WorkspacePath(); explicit != "" {
		path := filepath.Join(pkgDir, explicit)
		if filepath.Base(path) != common.ManifestName {
			path = filepath.Join(path, common.ManifestName)
		}

		ws, err := cargo.LoadManifest(path)
		if err != nil {
			return nil, fmt.Errorf("Failed to load the workspace of %s: %w", m.Path, err)
		}
		if !ws.IsWorkspace() {
			return nil, fmt.Errorf("%s is not a workspace manifest", path)
		}
		return &ws, nil
	}

	for dir := filepath.Dir(pkgDir); ; dir = filepath.Dir(dir) {
		path := filepath.Join(dir, common.ManifestName)
		if utils.PathExists(path) {
			ws, err := cargo.LoadManifest(path)
			if err != nil {
				return nil, err
			}

			if ws.IsWorkspace() {
				rel, err := filepath.Rel(dir, pkgDir)
				if err == nil && ws.HasMember(rel) {
					return &ws, nil
				}
				waterlog.Debugf("findWorkspace: %s is not a member of %s\n", m.Path, path)
				return nil, nil
			}
		}

		if filepath.Dir(dir) == dir {
			return nil, nil
		}
	}
}

// findMember searches below `root` for the manifest of the package `name`.
func findMember(root, name string) (manifest cargo.Manifest, err error) {
	paths, err := common.FindManifests(root)
	if err != nil {
		return
	}

	for _, path := range paths {
		var candidate cargo.Manifest
		candidate, err = cargo.LoadManifest(path)
		if err != nil {
			waterlog.Warnf("Skipping %s: %s\n", path, err)
			err = nil
			continue
		}

		if candidate.Name() == name {
			return candidate, nil
		}
	}

	err = PackageNotFoundErr{Name: name, Workspace: root}
	return
}

// IsNotFound reports whether err means no manifest or package was found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoManifest) || errors.Is(err, ErrPackageNotFound)
}
