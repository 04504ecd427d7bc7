package main

import (
	"os"

	"github.com/fzft/bucketmap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
