package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "strategy-wizard",
		Usage: "Configure and start trading strategy simulations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration `FILE`",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv `FILE` read before the environment (default: .env when present)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "override the configured log format (console, json)",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
			mockBackendCommand(),
			schemaCommand(),
			defaultsCommand(),
			previewCommand(),
		},
	}
}

func endpointFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Aliases: []string{"e"},
			Usage:   "simulation endpoint `URL`",
		},
		&cli.StringFlag{
			Name:    "strategy",
			Aliases: []string{"s"},
			Usage:   "strategy selected at start-up",
		},
		&cli.BoolFlag{
			Name:  "mock",
			Usage: "start an in-process mock backend and submit to it",
		},
		&cli.IntFlag{
			Name:  "mock-fail-status",
			Usage: "make the in-process mock backend fail with this HTTP status",
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Walk through the wizard in the terminal",
		Flags: append(endpointFlags(),
			&cli.BoolFlag{
				Name:  "no-spinner",
				Usage: "disable the progress spinner while submitting",
			},
		),
		Action: runAction,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the wizard as a web application",
		Flags: append(endpointFlags(),
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "listen `ADDRESS`",
			},
		),
		Action: serveAction,
	}
}

func mockBackendCommand() *cli.Command {
	return &cli.Command{
		Name:  "mock-backend",
		Usage: "Run a mock simulation backend that validates requests against the API contract",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "listen `ADDRESS`",
			},
			&cli.IntFlag{
				Name:  "fail-status",
				Usage: "answer every request with this HTTP status",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "hold every response for this long",
			},
		},
		Action: mockBackendAction,
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the simulation request contract",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "jsonschema or openapi",
				Value: "jsonschema",
			},
		},
		Action: schemaAction,
	}
}

func defaultsCommand() *cli.Command {
	return &cli.Command{
		Name:      "defaults",
		Usage:     "List strategies, or print the default configuration of one",
		ArgsUsage: "[strategy]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "yaml or json",
				Value: "yaml",
			},
		},
		Action: defaultsAction,
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Render a wizard step as plain text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "strategy to preview",
				Value:   "ma",
			},
			&cli.IntFlag{
				Name:  "step",
				Usage: "step to render (1, 2 or 3)",
				Value: 2,
			},
			&cli.StringFlag{
				Name:  "renderer",
				Usage: "text or html",
				Value: "text",
			},
		},
		Action: previewAction,
	}
}
