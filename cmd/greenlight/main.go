package main

import (
	"os"

	"github.com/greenlightd/greenlight/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
