// Copyright © 2024 The ELPS authors

// Command drl validates Drools rule language files.
package main

import "github.com/luthersystems/drl/cmd"

func main() {
	cmd.Execute()
}
