// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/taskconf/cmd/taskconf"

func main() {
	cmd.Execute()
}
