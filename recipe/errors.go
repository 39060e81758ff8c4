// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"errors"
	"fmt"
)

var (
	ErrNoHomepage     = errors.New("no package.homepage or package.repository set in Cargo.toml")
	ErrAbbreviatedRev = errors.New("git revision is abbreviated and there is no exact revision to fall back to")
)

// AbbreviatedRevError is returned when a git dependency is pinned to a
// shortened commit id that cannot be used as SRCREV.
type AbbreviatedRevError struct {
	Name string
	Rev  string
}

func (e *AbbreviatedRevError) Error() string {
	return fmt.Sprintf("%s: rev %q: %s", e.Name, e.Rev, ErrAbbreviatedRev)
}

func (e *AbbreviatedRevError) Unwrap() error {
	return ErrAbbreviatedRev
}

// UnknownOriginError is returned for a package whose origin could not be
// classified.
type UnknownOriginError struct {
	Name   string
	Origin any
}

func (e *UnknownOriginError) Error() string {
	return fmt.Sprintf("%s: unknown origin %T", e.Name, e.Origin)
}
