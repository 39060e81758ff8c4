// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package common

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/DataDrake/waterlog"
	"github.com/charlievieth/fastwalk"
)

const ManifestName = "Cargo.toml"

// skipDirs are never searched for manifests.
var skipDirs = [...]string{"target", "node_modules"}

// FindManifests returns the paths of every Cargo.toml below `root`, sorted.
// Build output and hidden directories are skipped.
func FindManifests(root string) (manifests []string, err error) {
	walkConf := fastwalk.Config{
		Follow: false,
	}
	var mutex sync.Mutex
	root = filepath.Clean(root)

	err = fastwalk.Walk(&walkConf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			waterlog.Debugf("FindManifests: skipping %s: %s\n", path, err)
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if filepath.Clean(path) != root && (strings.HasPrefix(name, ".") || slices.Contains(skipDirs[:], name)) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() != ManifestName {
			return nil
		}

		mutex.Lock()
		manifests = append(manifests, path)
		mutex.Unlock()

		return nil
	})
	if err != nil {
		return
	}

	slices.Sort(manifests)
	return
}
