package main

import (
	"os"

	"github.com/dmitrijs2005/reposync/internal/client/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
