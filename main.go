// Package main is the entry point for the dunequery CLI.
// It runs SQL files on the Dune query engine and shows the results.
package main

import (
	"dunequery/cli/cmd"
)

// main is the entry point for the dunequery CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
