// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, usersCommand, authCommand, logCommand, runsCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// syncCommand reconciles tracked users against the event log
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile tracked users' playlists and append the resulting events",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Sync a single tracked user by Spotify ID",
			},
			&cli.StringFlag{
				Name:    "store",
				Aliases: []string{"s"},
				Usage:   "Path to the event log (overrides config)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print per-playlist progress",
			},
		},
		Action: r.Sync,
	}
}

// usersCommand manages the tracked user registry
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage the tracked user registry",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Track a Spotify user",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "display-name"},
					&cli.StringArg{Name: "spotify-id"},
				},
				Action: r.UsersAdd,
			},
			{
				Name:  "list",
				Usage: "List tracked users",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UsersList,
			},
			{
				Name:  "remove",
				Usage: "Stop tracking a Spotify user",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "spotify-id"},
				},
				Action: r.UsersRemove,
			},
		},
	}
}

// authCommand handles Spotify OAuth2 authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show cached token state",
				Action: r.AuthStatus,
			},
		},
	}
}

// logCommand inspects the event log
func logCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Inspect the event log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Aliases: []string{"s"},
				Usage:   "Path to the event log (overrides config)",
			},
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Restrict to one playlist's events",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "Only events at or after this RFC3339 timestamp",
			},
			&cli.StringFlag{
				Name:  "until",
				Usage: "Only events at or before this RFC3339 timestamp",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
		},
		Action: r.Log,
	}
}

// runsCommand shows reconciliation run history
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Show recent reconciliation runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Restrict to one playlist's runs",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show",
				Value:   20,
			},
		},
		Action: r.Runs,
	}
}

// setupCommand initializes local state
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the registry database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Destination path",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
