package main

import (
	"os"

	"github.com/bianoble/update-submodules/cmd/update-submodules/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
