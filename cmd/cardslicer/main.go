package main

import (
	"os"

	"github.com/cardslicer/cardslicer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
