package cmd

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-bookstore/app/configs"
	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/models/migrations"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func loadEnv(c *cli.Command) (configs.ENV, error) {
	env, err := configs.LoadEnv(c.String("env-file"))
	if err != nil {
		return env, err
	}
	if err := configs.InitLogger(env.LogLevel, env.AppEnv); err != nil {
		return env, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return env, nil
}

func NewCli() *cli.Command {
	return &cli.Command{
		Name:  "bookstore",
		Usage: "Bookstore storefront cart service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file loaded before reading the environment",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server",
				Action: func(ctx context.Context, c *cli.Command) error {
					env, err := loadEnv(c)
					if err != nil {
						return err
					}
					return Serve(ctx, env)
				},
			},
			{
				Name:  "migrate",
				Usage: "Create the key-value table used by the mysql storage driver",
				Action: func(ctx context.Context, c *cli.Command) error {
					env, err := loadEnv(c)
					if err != nil {
						return err
					}
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Info().Msg("Migration complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session, encryption and CSRF keys for .env",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: ".env.new_keys", Usage: "file the keys are written to, empty to only print them"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return configs.GenerateAndPrintSessionKeys(c.Root().Writer, c.String("out"))
				},
			},
			{
				Name:  "sign-identity",
				Usage: "Sign an identity assertion the way the auth service does, for local testing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "user id"},
					&cli.StringFlag{Name: "email", Usage: "user email"},
					&cli.StringFlag{Name: "name", Usage: "display name"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					env, err := loadEnv(c)
					if err != nil {
						return err
					}
					return SignIdentity(c.Root().Writer, env, models.Identity{
						ID:    c.String("id"),
						Email: c.String("email"),
						Name:  c.String("name"),
					})
				},
			},
			{
				Name:      "quote",
				Usage:     "Price a cart snapshot file",
				ArgsUsage: "<cart.json>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return cli.Exit("quote expects exactly one cart file", 2)
					}
					return QuoteFile(c.Root().Writer, c.Args().First())
				},
			},
		},
	}
}

// RunCli runs the command line. Without a command the server is started.
func RunCli(ctx context.Context, args []string) error {
	if len(args) < 2 {
		args = append(args, "serve")
	}
	return NewCli().Run(ctx, args)
}
