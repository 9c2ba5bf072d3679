package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderramin/ganttly/internal/cli"
	"github.com/alexanderramin/ganttly/internal/config"
	"github.com/alexanderramin/ganttly/internal/db"
	"github.com/alexanderramin/ganttly/internal/persistence"
	"github.com/alexanderramin/ganttly/internal/store"
	"github.com/mattn/go-isatty"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	backend := persistence.New(database, persistence.WithRetention(cfg.SnapshotRetention))

	opts := []store.Option{
		store.WithUndoLimit(cfg.UndoLimit),
		store.WithAutosaveInterval(cfg.AutosaveInterval),
		store.WithAutosaveEnabled(cfg.AutosaveEnabled),
		store.WithPlatform(cfg.Platform, version),
	}
	if cfg.LogUseCases {
		opts = append(opts, store.WithUseCaseObserver(store.NewLogUseCaseObserver(os.Stderr)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	projects, err := store.Open(ctx, backend, opts...)
	if err != nil {
		return fmt.Errorf("opening project store: %w", err)
	}
	defer func() {
		// One-shot edits survive through the final autosave.
		err = errors.Join(err, projects.Close(context.Background()))
	}()

	app := &cli.App{Store: projects, Config: cfg}

	root := cli.NewRootCmd(app)
	args := os.Args[1:]
	if len(args) == 0 && (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) {
		args = []string{"shell"}
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
