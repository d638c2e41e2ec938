package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"doit/internal/cli"
	"doit/internal/config"
	"doit/internal/logging"
	"doit/internal/storage"
	"doit/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("doit", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	configPath := fs.String("config", config.ResolveConfigPath(), "config file")
	dbPath := fs.String("db", "", "database file (overrides db_path)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	firstLaunch := false
	if _, err := os.Stat(*configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger, logFile, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		return 1
	}
	defer logFile.Close()
	logger.Info("starting", "config", *configPath, "db", cfg.DBPath, "first_launch", firstLaunch)

	store, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("open database", "err", err)
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if rest := fs.Args(); len(rest) > 0 {
		return cli.Run(store, rest, os.Stdout, os.Stderr)
	}

	if err := ui.Run(store, cfg, logger); err != nil {
		logger.Error("program stopped", "err", err)
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		return 1
	}
	return 0
}
