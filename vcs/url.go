// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"fmt"
	"regexp"
	"strings"
)

// sshStyleRemote matches scp-like remotes such as
// git@github.com:GZGavinZhao/bitbaker.git. Nothing before the `@` may
// contain a `:` or `/`, so real URLs with a scheme never match.
var sshStyleRemote = regexp.MustCompile(`^[^:/@]+@[^:/]+:`)

// Prefix selects the BitBake fetcher used for a git URL.
type Prefix int

const (
	Git Prefix = iota
	GitSubmodule
)

func (p Prefix) String() string {
	switch p {
	case GitSubmodule:
		return "gitsm"
	default:
		return "git"
	}
}

// ToBitbakeURL converts a git remote URL into the form understood by the
// BitBake git fetcher.
//
// When `name` is not empty, the checkout is given its own name and
// destination suffix so that several git dependencies can be unpacked side
// by side.
//
// Each URL must be converted exactly once, the suffixes are appended
// unconditionally.
func ToBitbakeURL(url string, name string, prefix Prefix) string {
	if sshStyleRemote.MatchString(url) {
		url = "ssh://" + strings.Replace(url, ":", "/", 1)
	}

	// https://... -> git://...;protocol=https
	if idx := strings.Index(url, ":"); idx != -1 {
		switch proto := url[:idx]; proto {
		case "ssh", "http", "https":
			url = fmt.Sprintf("%s%s;protocol=%s", prefix, url[idx:], proto)
		}
	}

	// BitBake only looks for revisions on the master branch otherwise
	url += ";nobranch=1"

	if name != "" {
		url += fmt.Sprintf(";name=%s;destsuffix=%s", name, name)
	}

	return url
}
