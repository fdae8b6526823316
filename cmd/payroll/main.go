package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

const usage = `Usage: payroll [-memory] <command> [flags]

Commands:
  migrate       apply the database migrations
  seed          create the system pay components
  generate      generate the payroll of a month
  close-event   close a payment event
  summary       print the totals of a competence
  schedule      generate each month's payroll as soon as the month starts
`

func main() {
	os.Exit(run())
}

func run() int {
	memoryMode := flag.Bool("memory", false, "run against an in-memory store; nothing is persisted")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		if !*memoryMode {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			return 1
		}
		cfg = &config.Config{
			App:     config.AppConfig{Env: "development", LogLevel: os.Getenv("LOG_LEVEL")},
			Payroll: config.DefaultPayrollConfig(),
		}
	}
	setupLogger(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var a *app
	if *memoryMode {
		a, err = newMemoryApp(ctx, cfg)
	} else {
		a, err = newPostgresApp(ctx, cfg)
	}
	if err != nil {
		slog.Error("Failed to start", "error", err)
		return 1
	}
	defer a.close()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := a.dispatch(ctx, cmd, args); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			slog.Error("Invalid input", "command", cmd, "fields", verrs.ToMap())
			return 2
		}
		slog.Error("Command failed", "command", cmd, "error", err)
		return 1
	}
	return 0
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
