package main

import (
	"os"

	"github.com/hoistd/hoist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
