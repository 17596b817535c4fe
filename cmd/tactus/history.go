//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/analysis/shared"
	"github.com/farcloser/tactus/internal/history"
	"github.com/farcloser/tactus/internal/output"
)

const defaultHistoryDB = "tactus.db"

var errCompareArgs = errors.New("expected two entry ids, or --file with at least two stored analyses")

func historyCommand() *cli.Command {
	dbFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "db",
			Usage:   "SQLite history database",
			Value:   defaultHistoryDB,
			Sources: cli.EnvVars("TACTUS_HISTORY_DB"),
		}
	}

	formatFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
			Value:   "console",
		}
	}

	return &cli.Command{
		Name:  "history",
		Usage: "Inspect stored practice sessions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored analyses, most recent first",
				Flags: []cli.Flag{
					dbFlag(),
					formatFlag(),
					&cli.StringFlag{Name: "file", Usage: "Only analyses of this file"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum entries", Value: 20},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := history.Open(cmd.String("db"))
					if err != nil {
						return err
					}
					defer store.Close()

					entries, err := store.List(ctx, cmd.String("file"), cmd.Int("limit"))
					if err != nil {
						return err
					}

					data := make([]*format.Data, 0, len(entries))
					for i := range entries {
						data = append(data, &format.Data{
							Object: entries[i].ID,
							Meta: map[string]any{
								"file":    entries[i].File,
								"profile": entries[i].Profile,
								"at":      entries[i].CreatedAt.Format("2006-01-02 15:04:05"),
								"record":  output.Record(&entries[i].Result),
							},
						})
					}

					return printAll(cmd.String("format"), data)
				},
			},
			{
				Name:      "compare",
				Usage:     "Compare two sessions (older first), or the last two analyses of --file",
				ArgsUsage: "[<id> <id>]",
				Flags: []cli.Flag{
					dbFlag(),
					formatFlag(),
					&cli.StringFlag{Name: "file", Usage: "Compare the two most recent analyses of this file"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := history.Open(cmd.String("db"))
					if err != nil {
						return err
					}
					defer store.Close()

					previous, current, err := comparedEntries(ctx, cmd, store)
					if err != nil {
						return err
					}

					progress := history.Compare(previous, current)

					return printAll(cmd.String("format"), []*format.Data{{
						Object: fmt.Sprintf("%s -> %s", previous.ID, current.ID),
						Meta: map[string]any{
							"tempo_delta_bpm":        shared.Round2(progress.TempoDeltaBPM),
							"variance_delta_ms":      shared.Round2(progress.VarianceDeltaMs),
							"rushed_delta_percent":   shared.Round2(progress.RushedDeltaPercent),
							"dragged_delta_percent":  shared.Round2(progress.DraggedDeltaPercent),
							"consistency_delta":      shared.Round2(progress.ConsistencyDelta),
							"dynamic_range_delta_db": shared.Round2(progress.DynamicRangeDeltaDb),
							"steadier":               progress.Steadier,
							"more_consistent":        progress.MoreConsistent,
						},
					}})
				},
			},
		},
	}
}

func comparedEntries(ctx context.Context, cmd *cli.Command, store *history.Store) (*history.Entry, *history.Entry, error) {
	if cmd.NArg() == 2 {
		previous, err := store.Get(ctx, cmd.Args().Get(0))
		if err != nil {
			return nil, nil, err
		}

		current, err := store.Get(ctx, cmd.Args().Get(1))
		if err != nil {
			return nil, nil, err
		}

		return previous, current, nil
	}

	if cmd.NArg() != 0 || cmd.String("file") == "" {
		return nil, nil, errCompareArgs
	}

	entries, err := store.List(ctx, cmd.String("file"), 2)
	if err != nil {
		return nil, nil, err
	}

	if len(entries) < 2 {
		return nil, nil, errCompareArgs
	}

	return &entries[1], &entries[0], nil
}

func saveHistory(ctx context.Context, dbPath, name string, profile tactus.Profile, result *tactus.Result) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if _, err = store.Save(ctx, name, profile.String(), result); err != nil {
		return err
	}

	return nil
}

func printAll(formatName string, data []*format.Data) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	return formatter.PrintAll(data, os.Stdout)
}
