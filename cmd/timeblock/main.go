package main

import (
	"os"

	"github.com/OverStackedLab/mytimeblock.com/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
