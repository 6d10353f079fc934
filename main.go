package main

import "github.com/protocrate/protocrate/cmd"

// main is the entry point of the protocrate CLI.
// It executes the root command which handles argument parsing and the
// crate generation pipeline.
func main() {
	cmd.Execute()
}
