// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package state

import (
	"errors"
	"fmt"
)

var (
	ErrNoManifest      = errors.New("could not find `Cargo.toml` in the directory or any parent directory")
	ErrVirtualManifest = errors.New("manifest is a virtual workspace manifest, select a package with --package")
	ErrPackageNotFound = errors.New("package not found in the workspace")
	ErrRootNotInLock   = errors.New("root package not found in the lockfile")
)

// PackageNotFoundErr is returned when --package names no workspace member.
type PackageNotFoundErr struct {
	Name      string
	Workspace string
}

func (e PackageNotFoundErr) Error() string {
	return fmt.Sprintf("package %s not found in the workspace at %s", e.Name, e.Workspace)
}

func (e PackageNotFoundErr) Unwrap() error {
	return ErrPackageNotFound
}
