// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultVersion = "0.0.0"

var (
	ErrNotInheritable = errors.New("field cannot be inherited from the workspace")
)

// Metadata holds the fields of `[package]` used to write a recipe, after
// workspace inheritance. Absent fields are empty.
type Metadata struct {
	Name        string
	Version     string
	Description string
	Homepage    string
	Repository  string
	License     string
	LicenseFile string
}

type packageSection struct {
	Name string `toml:"name"`
	// Inheritable fields are either a string or `{ workspace = true }`.
	Version     any `toml:"version"`
	Description any `toml:"description"`
	Homepage    any `toml:"homepage"`
	Repository  any `toml:"repository"`
	License     any `toml:"license"`
	LicenseFile any `toml:"license-file"`
	// Path to the workspace root, when it is not an ancestor directory.
	Workspace string `toml:"workspace"`
}

type workspaceSection struct {
	Members []string       `toml:"members"`
	Exclude []string       `toml:"exclude"`
	Package map[string]any `toml:"package"`
}

type dependencyTables struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

type Manifest struct {
	Path      string            `toml:"-"`
	Package   *packageSection   `toml:"package"`
	Workspace *workspaceSection `toml:"workspace"`

	Dependencies      map[string]any              `toml:"dependencies"`
	DevDependencies   map[string]any              `toml:"dev-dependencies"`
	BuildDependencies map[string]any              `toml:"build-dependencies"`
	Target            map[string]dependencyTables `toml:"target"`
}

func LoadManifest(path string) (manifest Manifest, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}

	if err = toml.Unmarshal(raw, &manifest); err != nil {
		err = fmt.Errorf("Failed to parse %s: %w", path, err)
		return
	}

	manifest.Path = path
	return
}

// IsVirtual reports whether the manifest only declares a workspace.
func (m *Manifest) IsVirtual() bool {
	return m.Package == nil
}

func (m *Manifest) IsWorkspace() bool {
	return m.Workspace != nil
}

func (m *Manifest) Name() string {
	if m.Package == nil {
		return ""
	}
	return m.Package.Name
}

// WorkspacePath is the value of `package.workspace`, if any.
func (m *Manifest) WorkspacePath() string {
	if m.Package == nil {
		return ""
	}
	return m.Package.Workspace
}

// Metadata resolves the package fields, taking `field.workspace = true`
// values from `[workspace.package]` of `ws`. `ws` may be nil when the
// package is not part of a workspace.
func (m *Manifest) Metadata(ws *Manifest) (md Metadata, err error) {
	if m.Package == nil {
		err = fmt.Errorf("%s has no [package] section", m.Path)
		return
	}

	md.Name = m.Package.Name
	fields := []struct {
		key   string
		value any
		dest  *string
	}{
		{"version", m.Package.Version, &md.Version},
		{"description", m.Package.Description, &md.Description},
		{"homepage", m.Package.Homepage, &md.Homepage},
		{"repository", m.Package.Repository, &md.Repository},
		{"license", m.Package.License, &md.License},
		{"license-file", m.Package.LicenseFile, &md.LicenseFile},
	}

	for _, field := range fields {
		if *field.dest, err = resolveField(field.key, field.value, ws); err != nil {
			err = fmt.Errorf("%s: package.%s: %w", m.Path, field.key, err)
			return
		}
	}

	// An inherited license-file is relative to the workspace root
	if isInherited(m.Package.LicenseFile) && md.LicenseFile != "" && !filepath.IsAbs(md.LicenseFile) {
		rel, relErr := filepath.Rel(filepath.Dir(m.Path), filepath.Join(filepath.Dir(ws.Path), md.LicenseFile))
		if relErr != nil {
			err = fmt.Errorf("%s: package.license-file: %w", m.Path, relErr)
			return
		}
		md.LicenseFile = filepath.ToSlash(rel)
	}

	if md.Version == "" {
		md.Version = defaultVersion
	}
	return
}

func isInherited(value any) bool {
	table, ok := value.(map[string]any)
	if !ok {
		return false
	}
	inherit, _ := table["workspace"].(bool)
	return inherit
}

func resolveField(key string, value any, ws *Manifest) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case map[string]any:
		if !isInherited(v) {
			return "", fmt.Errorf("expected a string or `workspace = true`")
		}
		if ws == nil || ws.Workspace == nil {
			return "", fmt.Errorf("inherits from the workspace, but no workspace was found")
		}

		switch inherited := ws.Workspace.Package[key].(type) {
		case nil:
			return "", fmt.Errorf("workspace.package.%s is not set in %s", key, ws.Path)
		case string:
			return inherited, nil
		default:
			return "", ErrNotInheritable
		}
	default:
		return "", fmt.Errorf("unexpected type %T", value)
	}
}

// HasMember reports whether `rel`, relative to the workspace root, is a
// member of the workspace: either listed in `workspace.members` (glob
// patterns allowed) or a path dependency of the root package, and not
// excluded.
func (m *Manifest) HasMember(rel string) bool {
	if m.Workspace == nil {
		return false
	}

	rel = strings.Trim(strings.ReplaceAll(rel, "\\", "/"), "/")
	for _, pattern := range m.Workspace.Exclude {
		if matchMember(pattern, rel) {
			return false
		}
	}
	for _, pattern := range m.Workspace.Members {
		if matchMember(pattern, rel) {
			return true
		}
	}
	return slices.Contains(m.PathDependencies(), rel)
}

// PathDependencies returns the directories of the path dependencies of the
// package, relative to its manifest, target-specific tables included.
func (m *Manifest) PathDependencies() (res []string) {
	if m.Package == nil {
		return
	}

	tables := []dependencyTables{{m.Dependencies, m.DevDependencies, m.BuildDependencies}}
	for _, target := range m.Target {
		tables = append(tables, target)
	}

	for _, table := range tables {
		for _, deps := range []map[string]any{table.Dependencies, table.DevDependencies, table.BuildDependencies} {
			for _, dep := range deps {
				spec, ok := dep.(map[string]any)
				if !ok {
					continue
				}
				if dir, ok := spec["path"].(string); ok && dir != "" {
					res = append(res, strings.Trim(path.Clean(strings.ReplaceAll(dir, "\\", "/")), "/"))
				}
			}
		}
	}

	slices.Sort(res)
	return slices.Compact(res)
}

func matchMember(pattern, rel string) bool {
	pattern = strings.Trim(path.Clean(strings.ReplaceAll(pattern, "\\", "/")), "/")
	if pattern == rel {
		return true
	}
	matched, err := path.Match(pattern, rel)
	return err == nil && matched
}
