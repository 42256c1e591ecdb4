package main

import (
	"os"

	"github.com/developertyrone/sortimages/pkg/cli"
)

func main() {
	// Execute parses the command line, runs the sort and reports errors.
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
