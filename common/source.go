// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package common

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseSource parses a lockfile source id such as
// `registry+https://github.com/rust-lang/crates.io-index` or
// `git+https://github.com/foo/bar?branch=dev#<commit>` into an Origin.
//
// `indexName` maps a registry URL, without its `registry+` or `sparse+`
// prefix, to the name of its index. The returned
// precise revision is only set for git sources.
func ParseSource(source string, indexName func(string) string) (origin Origin, precise string, err error) {
	if source == "" {
		origin = PathOrigin{}
		return
	}

	kind, rest, ok := strings.Cut(source, "+")
	if !ok {
		err = fmt.Errorf("ParseSource: malformed source %q", source)
		return
	}

	switch kind {
	case "registry", "sparse":
		origin = RegistryOrigin{Index: indexName(rest)}
	case "path":
		origin = PathOrigin{}
	case "git":
		origin, precise, err = parseGitSource(rest)
	default:
		origin = URLOrigin{URL: rest}
	}

	return
}

func parseGitSource(raw string) (origin GitOrigin, precise string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		err = fmt.Errorf("ParseSource: malformed git source %q: %w", raw, err)
		return
	}

	query := u.Query()
	switch {
	case query.Has("branch"):
		origin.Reference = GitReference{Kind: Branch, Name: query.Get("branch")}
	case query.Has("tag"):
		origin.Reference = GitReference{Kind: Tag, Name: query.Get("tag")}
	case query.Has("rev"):
		origin.Reference = GitReference{Kind: Rev, Name: query.Get("rev")}
	default:
		origin.Reference = GitReference{Kind: DefaultBranch}
	}

	precise = u.Fragment
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	origin.Protocol = "git"
	origin.URL = u.String()
	return
}
