// Command fraktile runs either the coordinator (server) or a compute node
// (worker) half of the distributed fractal render grid.
package main

import (
	"fmt"
	"os"

	"fraktile/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch cli.ClassifyExit(err) {
	case cli.ExitBindFailure:
		return 1
	case cli.ExitConfigError:
		return 2
	default:
		return 1
	}
}
