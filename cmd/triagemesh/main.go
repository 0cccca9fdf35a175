package main

import (
	"fmt"
	"os"

	"github.com/triagemesh/triagemesh/cmd/triagemesh/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
