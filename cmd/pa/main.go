package main

import (
	"os"

	"github.com/dshills/pa/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
