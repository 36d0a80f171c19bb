// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lfmgenre/internal/formatter"
)

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format (" + strings.Join(formatter.Formats, ", ") + ")",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to this file instead of stdout",
		},
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand handles database setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// tagCommand tags audio files with Last.fm genres.
func tagCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "Look up genres without writing them to files",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Number of files read and written concurrently",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the run report as JSON",
		},
	}

	return &cli.Command{
		Name:      "tag",
		Usage:     "Look up Last.fm genres for audio files and write them to the files",
		ArgsUsage: "<file or directory>...",
		Flags:     append(flags, reportFlags()...),
		Action:    r.Tag,
	}
}

// lookupCommand shows the genre Last.fm gives for one track without touching files.
func lookupCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "artist",
			Aliases: []string{"a"},
			Usage:   "Track artist",
		},
		&cli.StringFlag{
			Name:    "title",
			Aliases: []string{"t"},
			Usage:   "Track title",
		},
		&cli.StringFlag{
			Name:  "album",
			Usage: "Album title",
		},
		&cli.StringFlag{
			Name:  "album-artist",
			Usage: "Album artist (defaults to the track artist)",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"i"},
			Usage:   "Read artist, title and album from this audio file",
		},
	}

	return &cli.Command{
		Name:   "lookup",
		Usage:  "Show the Last.fm tags and resulting genre for one track",
		Flags:  append(flags, jsonFlags()...),
		Action: r.Lookup,
	}
}

// tracksCommand queries the history of tagged tracks.
func tracksCommand(r *Runner) *cli.Command {
	listFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "status",
			Aliases: []string{"s"},
			Usage:   "Only tracks with this status (tagged, skipped, failed)",
		},
		&cli.StringFlag{
			Name:  "artist",
			Usage: "Only tracks by this artist",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of tracks to return",
			Value: 50,
		},
	}
	listFlags = append(listFlags, reportFlags()...)

	return &cli.Command{
		Name:  "tracks",
		Usage: "Tagged track history",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recorded tracks",
				Flags:  listFlags,
				Action: r.TracksList,
			},
			{
				Name:      "show",
				Usage:     "Show one recorded track by path or ID",
				ArgsUsage: "<path or id>",
				Flags:     jsonFlags(),
				Action:    r.TracksShow,
			},
			{
				Name:   "stats",
				Usage:  "Count recorded tracks by status",
				Flags:  jsonFlags(),
				Action: r.TracksStats,
			},
			{
				Name:      "delete",
				Usage:     "Forget a recorded track",
				ArgsUsage: "<path or id>",
				Action:    r.TracksDelete,
			},
		},
	}
}

// runsCommand queries the history of tag runs.
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Tag run history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tag runs, newest first",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to return",
						Value: 20,
					},
				}, jsonFlags()...),
				Action: r.RunsList,
			},
			{
				Name:      "show",
				Usage:     "Show a run report",
				ArgsUsage: "<sequence|latest>",
				Flags:     reportFlags(),
				Action:    r.RunsShow,
			},
			{
				Name:      "delete",
				Usage:     "Delete a run; its tracks are kept",
				ArgsUsage: "<sequence>",
				Action:    r.RunsDelete,
			},
		},
	}
}

// configCommand inspects and creates the configuration file.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: r.ConfigShow,
			},
			{
				Name:   "init",
				Usage:  "Write an example config file",
				Action: r.ConfigInit,
			},
			{
				Name:   "validate",
				Usage:  "Check the configuration for missing or invalid settings",
				Action: r.ConfigValidate,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive tagging.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch interactive TUI for tagging a library",
		ArgsUsage: "[file or directory]...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Start with dry run enabled",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/lfmgenre-tui.log",
			},
		},
		Action: r.TUI,
	}
}
