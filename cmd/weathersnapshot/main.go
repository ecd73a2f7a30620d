package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/lox/weathersnapshot/internal/config"
	"github.com/lox/weathersnapshot/internal/logging"
	"github.com/lox/weathersnapshot/internal/report"
	"github.com/lox/weathersnapshot/internal/scheduler"
)

var version = "dev"

type CLI struct {
	Config config.Config `embed:""`

	Version kong.VersionFlag `help:"Print version and exit."`

	Run   RunCmd   `cmd:"" default:"1" help:"Take one snapshot of the latest readings and exit."`
	Watch WatchCmd `cmd:"" help:"Take a snapshot now and then repeatedly on an interval."`
}

type app struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
}

type RunCmd struct{}

func (RunCmd) Run(a *app) error {
	runner, err := report.New(a.cfg, a.logger)
	if err != nil {
		return err
	}
	_, err = runner.Run(a.ctx)
	return err
}

type WatchCmd struct {
	Every time.Duration `default:"15m" env:"KRS_WATCH_EVERY" help:"Interval between snapshots."`
}

func (c WatchCmd) Run(a *app) error {
	runner, err := report.New(a.cfg, a.logger)
	if err != nil {
		return err
	}
	s := scheduler.New(c.Every, func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		var runErr *report.Error
		if errors.As(err, &runErr) {
			for _, item := range runErr.Checklist {
				a.logger.Warn("check", "item", item)
			}
		}
		return err
	}, a.logger)
	return s.Run(a.ctx)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: load .env: %v\n", err)
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("weathersnapshot"),
		kong.Description("Snapshot the latest weather readings to CSV and HTML charts."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	logger, err := logging.New(os.Stderr, cli.Config.LogLevel, cli.Config.LogFormat)
	if err != nil {
		kctx.Fatalf("%v", err)
	}
	slog.SetDefault(logger)

	if err := cli.Config.Validate(); err != nil {
		kctx.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = kctx.Run(&app{ctx: ctx, cfg: &cli.Config, logger: logger})
	stop()
	if err != nil {
		var runErr *report.Error
		if errors.As(err, &runErr) {
			logger.Error("snapshot failed", "kind", runErr.Kind, "err", runErr.Err)
			fmt.Fprint(os.Stderr, runErr.Diagnostic())
		} else {
			logger.Error("snapshot failed", "err", err)
		}
		os.Exit(1)
	}
}
