// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pastesettings/pastesettings/cmd/pastesettings"

func main() {
	cmd.Execute()
}
