// Command worker runs the grading client: it connects to a commander,
// pulls assignments, executes them, and reports the results.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hackerjacks/gradecluster/internal/config"
	"github.com/hackerjacks/gradecluster/internal/logging"
	"github.com/hackerjacks/gradecluster/internal/worker"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "worker",
		Usage: "execute assignments dispatched by a commander",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./worker.toml",
				Usage:   "path to the worker TOML configuration file",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadWorker(cmd.String("config"))
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, os.Stderr)

	w, err := worker.New(cfg, log)
	if err != nil {
		return err
	}

	return w.Run(ctx)
}
