// Package main is the entry point for the rlstats CLI, which analyses
// Rocket League game history by scoreline, goal differential and game.
package main

import "github.com/pable/rlstats/cmd"

func main() {
	cmd.Execute()
}
