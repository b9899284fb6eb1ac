package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/drewfead/watchlist/internal/commands"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:     "watchlist",
		Usage:    "Add movies to a Notion watchlist using metadata from OMDb",
		Commands: commands.Watchlist,
	}
	if err := app.Run(os.Args); err != nil {
		zap.L().Fatal("Fatal error", zap.Error(err))
	}
}
