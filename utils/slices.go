// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package utils

import "strings"

// Map applies `f` to each element of `a`.
func Map[T, U any](a []T, f func(T) U) []U {
	res := make([]U, 0, len(a))

	for _, x := range a {
		res = append(res, f(x))
	}

	return res
}

// SplitTrim splits `s` around `sep` and trims the whitespace of each part.
func SplitTrim(s string, sep string) []string {
	return Map(strings.Split(s, sep), strings.TrimSpace)
}
