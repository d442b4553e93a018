// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand starts the collection service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the collection service (GET/POST /api/users)",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend: sqlite or document",
				Value: "sqlite",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// accountCommand handles signup, login, logout and session status.
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "account",
		Aliases: []string{"acc"},
		Usage:   "Manage the current account session",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Create an account and log in",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
					&cli.StringArg{Name: "password"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.AccountSignup,
			},
			{
				Name:  "login",
				Usage: "Log in with username and password",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
					&cli.StringArg{Name: "password"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.AccountLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the current session",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AccountLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session identity",
				Flags:  []cli.Flag{configFlag(), prettyFlag()},
				Action: r.AccountStatus,
			},
		},
	}
}

// favCommand handles favorite toggling and listing for the logged-in user.
func favCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "fav",
		Aliases: []string{"favorites"},
		Usage:   "Manage favorites for the logged-in user",
		Commands: []*cli.Command{
			{
				Name:  "toggle",
				Usage: "Add a restaurant to favorites, or remove it if present",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "name",
						Usage: "Restaurant name to store with the entry",
					},
					&cli.StringFlag{
						Name:  "address",
						Usage: "Restaurant address to store with the entry",
					},
				},
				Action: r.FavToggle,
			},
			{
				Name:   "list",
				Usage:  "List the current user's favorites",
				Flags:  []cli.Flag{configFlag(), prettyFlag()},
				Action: r.FavList,
			},
			{
				Name:  "check",
				Usage: "Check whether a restaurant id is a favorite",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.FavCheck,
			},
		},
	}
}

// usersCommand exposes the raw collection for inspection.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Inspect the stored user collection",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Dump all user records as JSON",
				Flags:  []cli.Flag{configFlag(), prettyFlag()},
				Action: r.UsersList,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive favorites management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for login and favorites",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "pretty",
		Usage: "Pretty-print output",
		Value: true,
	}
}
