package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"pkdindustries/scry/internal/config"
	"pkdindustries/scry/internal/console"
	"pkdindustries/scry/internal/core"
)

var Version = "0.9.0"

func main() {
	cmd := &cli.Command{
		Name:    "scry",
		Usage:   "conversational research assistant with tool calling",
		Version: Version,
		Flags:   config.GetFlags(),
		Action:  run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli.Command) error {
	cfg := config.NewConfiguration(c)
	core.InitLogger(cfg.Assistant.Verbose)

	fmt.Print(console.GetBanner(Version))
	if cfg.Assistant.Verbose {
		cfg.PrintConfig()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	system, err := console.NewSystem(ctx, cfg)
	if err != nil {
		return err
	}

	return console.Run(ctx, cfg, system, Version)
}
