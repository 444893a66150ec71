package main

import (
	"os"

	"github.com/refsync/refsync/cmd/refsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
