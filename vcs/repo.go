// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"errors"
	"fmt"

	"github.com/DataDrake/waterlog"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// maxTagDepth bounds how many annotated tags are followed before giving up.
const maxTagDepth = 16

// ProjectRepo describes where the project being packaged can be fetched
// from upstream.
type ProjectRepo struct {
	URI    string
	Branch string
	Rev    string
	Tag    bool
}

// Probe attempts to guess the upstream repo the project in `dir` can be
// fetched from.
func Probe(dir string) (info ProjectRepo, err error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
		// Linked worktrees keep the remotes in the main repository
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		err = fmt.Errorf("Unable to determine git repo for this project: %w", err)
		return
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		err = fmt.Errorf("Unable to find remote 'origin' for this project: %w", err)
		return
	}

	wt, err := repo.Worktree()
	if err != nil {
		err = fmt.Errorf("Unable to determine the submodules: %w", err)
		return
	}
	submodules, err := wt.Submodules()
	if err != nil {
		err = fmt.Errorf("Unable to determine the submodules: %w", err)
		return
	}
	prefix := Git
	if len(submodules) > 0 {
		prefix = GitSubmodule
	}

	urls := remote.Config().URLs
	if len(urls) == 0 || urls[0] == "" {
		err = errors.New("No URL for remote 'origin'")
		return
	}
	info.URI = ToBitbakeURL(urls[0], "", prefix)

	head, err := repo.Head()
	if err != nil {
		err = fmt.Errorf("Unable to find HEAD: %w", err)
		return
	}

	// A detached HEAD shortens to "HEAD"
	info.Branch = head.Name().Short()
	if info.Branch == "" {
		err = errors.New("Unable to resolve HEAD to a branch")
		return
	}
	if info.Branch != "master" && info.Branch != "HEAD" {
		info.URI += ";branch=" + info.Branch
	}

	if head.Hash().IsZero() {
		err = errors.New("Unable to resolve HEAD to a commit")
		return
	}
	info.Rev = head.Hash().String()
	info.Tag = revIsTag(repo, head.Hash())

	return
}

// ProbeOrDefault is Probe, except that a failure is only reported as a
// warning and an empty ProjectRepo is returned instead.
func ProbeOrDefault(dir string) ProjectRepo {
	info, err := Probe(dir)
	if err != nil {
		waterlog.Warnln(err)
		return ProjectRepo{}
	}
	return info
}

// revIsTag reports whether any tag of `repo` resolves to the commit `rev`.
func revIsTag(repo *git.Repository, rev plumbing.Hash) bool {
	tags, err := repo.Tags()
	if err != nil {
		return false
	}

	found := false
	_ = tags.ForEach(func(ref *plumbing.Reference) error {
		commit, err := peelToCommit(repo, ref.Hash())
		if err != nil {
			waterlog.Debugf("revIsTag: skipping tag %s: %s\n", ref.Name().Short(), err)
			return nil
		}
		if commit == rev {
			found = true
			return storer.ErrStop
		}
		return nil
	})

	return found
}

// peelToCommit follows annotated tags until it reaches the commit they
// point at.
func peelToCommit(repo *git.Repository, hash plumbing.Hash) (plumbing.Hash, error) {
	for i := 0; i < maxTagDepth; i++ {
		tag, err := repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			// Lightweight tag, or the end of an annotated chain
			commit, err := repo.CommitObject(hash)
			if err != nil {
				return plumbing.ZeroHash, err
			}
			return commit.Hash, nil
		} else if err != nil {
			return plumbing.ZeroHash, err
		}

		hash = tag.Target
	}

	return plumbing.ZeroHash, fmt.Errorf("tag chain at %s is too deep", hash)
}
