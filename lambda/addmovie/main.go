package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/drewfead/watchlist/internal/commands"
)

func main() {
	app := &cli.App{
		Name:   "addmovie",
		Usage:  "Lambda function adding the requested movie to the Notion watchlist",
		Flags:  commands.LambdaFlags(),
		Action: commands.StartLambda,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("failed to start lambda: %v", err)
	}
}
