package main

import (
	"fmt"
	"os"

	"meatflow/internal/cli"
)

func main() {
	root := cli.NewRootCommand("publisher", "Publish meat trade aggregates for the map and ranking front end")
	root.AddCommand(
		newBuildCommand(),
		newServeCommand(),
		newCheckNamesCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "publisher:", err)
		os.Exit(1)
	}
}
