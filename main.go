// Package main is the entry point for the matchmetrics CLI, which imports
// football match event logs and prints statistics, heatmaps and pass networks.
package main

import "github.com/pable/go-match-metrics/cmd"

func main() {
	cmd.Execute()
}
