package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "catalog-api",
		Usage:  "calibration equipment catalog and back-office API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: migrate,
			},
			{
				Name:   "seed",
				Usage:  "Migrate and insert demo categories and products into an empty catalog",
				Action: seed,
			},
			{
				Name:  "create-admin",
				Usage: "Create a back-office account, or reset its password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "login email"},
					&cli.StringFlag{Name: "name", Value: "Administrator", Usage: "display name"},
					&cli.StringFlag{Name: "password", Required: true, Usage: "at least 8 characters"},
				},
				Action: createAdmin,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
