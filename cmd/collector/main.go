package main

import (
	"fmt"
	"os"

	"meatflow/internal/cli"
)

func main() {
	root := cli.NewRootCommand("collector", "Load the meat trade CSV export into the sqlite store")
	root.AddCommand(newRunCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "collector:", err)
		os.Exit(1)
	}
}
