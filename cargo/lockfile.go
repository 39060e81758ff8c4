// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/common"
	"golang.org/x/mod/semver"
)

const LockfileName = "Cargo.lock"

var (
	ErrNoLockfile = errors.New("no Cargo.lock found, run `cargo generate-lockfile` first")
)

type lockfile struct {
	Version  int           `toml:"version"`
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Checksum     string   `toml:"checksum"`
	Dependencies []string `toml:"dependencies"`
}

// LoadLockfile reads the resolved package set from the lockfile at `path`.
// `indexName` names the registry index a registry package comes from.
func LoadLockfile(path string, indexName func(string) string) (pkgs []common.Package, err error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("%s: %w", path, ErrNoLockfile)
		return
	} else if err != nil {
		return
	}

	var lock lockfile
	if _, err = toml.Decode(string(raw), &lock); err != nil {
		err = fmt.Errorf("Failed to parse %s: %w", path, err)
		return
	}

	for _, lp := range lock.Packages {
		if lp.Name == "" {
			err = fmt.Errorf("%s: package entry without a name", path)
			return
		}

		if !semver.IsValid("v" + lp.Version) {
			waterlog.Warnf("%s has a non-semver version %q\n", lp.Name, lp.Version)
		}

		pkg := common.Package{
			Name:         lp.Name,
			Version:      lp.Version,
			Source:       lp.Source,
			Dependencies: lp.Dependencies,
		}

		if pkg.Origin, pkg.Precise, err = common.ParseSource(lp.Source, indexName); err != nil {
			err = fmt.Errorf("%s: %s: %w", path, lp.Name, err)
			return
		}

		waterlog.Debugf("LoadLockfile: %s\n", pkg.Show(false))
		pkgs = append(pkgs, pkg)
	}

	return
}
