// Command commander runs the dispatch-and-completion engine against a
// directory of per-student assignments.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hackerjacks/gradecluster/internal/commander"
	"github.com/hackerjacks/gradecluster/internal/config"
	"github.com/hackerjacks/gradecluster/internal/logging"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "commander",
		Usage: "dispatch assignments to workers and collect their results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./commander.toml",
				Usage:   "path to the commander TOML configuration file",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "commander:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadCommander(cmd.String("config"))
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, os.Stderr)

	c, err := commander.New(cfg, log, commander.Callbacks{
		OnSuccess: func(key string) { log.Info("assignment succeeded", "key", key) },
		OnFailure: func(key string) { log.Warn("assignment attempt timed out", "key", key) },
		OnClientConnected: func(ip string) {
			log.Info("worker connected", "ip", ip)
		},
		OnClientTimeout: func(ip string) {
			log.Warn("worker timed out", "ip", ip)
		},
	})
	if err != nil {
		return err
	}

	return c.Run(ctx)
}
