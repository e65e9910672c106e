package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/reposync/internal/buildinfo"
	"github.com/dmitrijs2005/reposync/internal/daemon"
	"github.com/dmitrijs2005/reposync/internal/daemon/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := daemon.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
