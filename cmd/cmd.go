// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that reads the TOML config.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for the database and configuration.
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
				Name:   "config",
				Usage:  "Create a config.toml from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in with Google using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and discard the stored credential",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
		},
	}
}

// accountCommand manages locally stored accounts
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage stored accounts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List locally stored accounts",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "remote",
						Usage: "List registered users from the roster sheet instead",
					},
				},
				Action: r.AccountList,
			},
			{
				Name:  "remove",
				Usage: "Remove a stored account by email",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Email of the account to remove",
						Required: true,
					},
				},
				Action: r.AccountRemove,
			},
		},
	}
}

// catalogCommand handles course catalog operations
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"courses"},
		Usage:   "Course catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List accessible topics with watch progress",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CatalogList,
			},
			{
				Name:  "show",
				Usage: "Show one topic's videos",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "topic",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.CatalogShow,
			},
			{
				Name:  "export",
				Usage: "Export the catalog to a file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title for markdown exports",
						Value: "Course Catalog",
					},
				},
				Action: r.CatalogExport,
			},
			{
				Name:   "seed",
				Usage:  "Append the demo course list to an empty content sheet",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CatalogSeed,
			},
		},
	}
}

// progressCommand handles watch progress operations
func progressCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "progress",
		Usage: "Track and sync watch progress",
		Commands: []*cli.Command{
			{
				Name:  "toggle",
				Usage: "Toggle completion for one video",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "topic",
						Usage:    "Topic name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "video",
						Usage:    "Video reference to toggle",
						Required: true,
					},
				},
				Action: r.ProgressToggle,
			},
			{
				Name:  "summary",
				Usage: "Show per-topic watch summaries",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ProgressSummary,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive catalog browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing the catalog",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
