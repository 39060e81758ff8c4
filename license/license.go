// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package license

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/utils"
)

const (
	// Closed marks a package without an open source license.
	Closed = "CLOSED"
	// Placeholder replaces checksums that have to be filled in by hand.
	Placeholder = "generateme"
)

// fileMD5 streams the file at `path` through MD5.
func fileMD5(path string) (sum string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	hash := md5.New()
	if _, err = io.Copy(hash, file); err != nil {
		return
	}

	sum = hex.EncodeToString(hash.Sum(nil))
	return
}

// File finds the license file for `name` below `root`, the top level of the
// package, and returns the LIC_FILES_CHKSUM entry for it. `relDir` is the
// location of `root` inside the fetched sources.
//
// A bare LICENSE file is only considered when `single` is set, since every
// part of a multi-license expression would otherwise match the same file.
func File(root, relDir, name string, single bool) string {
	if name == Closed {
		return ""
	}

	candidates := []string{name, "LICENSE-" + name}
	if single {
		candidates = append(candidates, "LICENSE")
	}

	for _, candidate := range candidates {
		absPath := filepath.Join(root, candidate)
		if !utils.PathExists(absPath) {
			continue
		}

		sum, err := fileMD5(absPath)
		if err != nil {
			waterlog.Warnf("Unable to checksum license file %s: %s\n", absPath, err)
			sum = Placeholder
		}
		return fmt.Sprintf("file://%s;md5=%s \\\n", filepath.Join(relDir, candidate), sum)
	}

	return fmt.Sprintf("file://%s;md5=%s \\\n", name, Placeholder)
}
