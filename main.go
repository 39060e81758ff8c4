// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"github.com/GZGavinZhao/bitbaker/cmd"
)

func main() {
	cmd.Execute()
}
