//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tactus/internal/history"
	"github.com/farcloser/tactus/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the analysis over HTTP (configured from the environment or a .env file)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides TACTUS_ADDR",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}

			if addr := cmd.String("addr"); addr != "" {
				cfg.Addr = addr
			}

			var options []server.Option

			if cfg.HistoryDB != "" {
				store, err := history.Open(cfg.HistoryDB)
				if err != nil {
					return fmt.Errorf("opening history: %w", err)
				}
				defer store.Close()

				options = append(options, server.WithHistory(store))
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, options...).Listen(ctx)
		},
	}
}
