// Package main provides the entry point for the shelfsync CLI tool.
package main

import "github.com/quickmart/shelfsync/cmd/shelfsync/cmd"

// Version information populated by the build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
