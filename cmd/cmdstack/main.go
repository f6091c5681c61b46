// Package main is the entry point for the cmdstack interactive shell.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/dshills/cmdstack/internal/config"
	"github.com/dshills/cmdstack/internal/manager"
	"github.com/dshills/cmdstack/internal/script"
	"github.com/dshills/cmdstack/internal/shell"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.scriptDir != "" {
		cfg.ScriptDir = opts.scriptDir
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mgrConfig := manager.DefaultConfig().
		WithMaxHistoryItems(cfg.MaxHistoryItems)
	if cfg.EnableMetrics {
		mgrConfig = mgrConfig.WithMetrics()
	}

	mgr := manager.New(mgrConfig)
	mgr.SetLogger(log.With().Str("component", "manager").Logger())
	defer mgr.Shutdown()

	if err := shell.RegisterBuiltins(mgr, shell.NewStore()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	host := script.NewHost(mgr, log.With().Str("component", "script").Logger())
	defer host.Close()

	if cfg.ScriptDir != "" {
		if _, err := host.LoadDir(cfg.ScriptDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	// Reload history bounds when the config file changes on disk.
	if opts.configPath != "" && opts.watch {
		watcher, err := config.NewWatcher(opts.configPath, func(cfg config.Config) {
			mgr.SetMaxHistoryItems(cfg.MaxHistoryItems)
			log.Info().Int("max_history_items", cfg.MaxHistoryItems).Msg("config reloaded")
		}, config.WithErrorHandler(func(err error) {
			log.Warn().Err(err).Msg("config reload failed")
		}))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer watcher.Close()
	}

	sh := shell.New(mgr, os.Stdin, os.Stdout,
		shell.WithLogger(log.With().Str("component", "shell").Logger()))
	if err := sh.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

type options struct {
	configPath string
	scriptDir  string
	logLevel   string
	watch      bool
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "cmdstack.toml", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "cmdstack.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.scriptDir, "scripts", "", "Directory of Lua command scripts")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flag.BoolVar(&opts.watch, "watch", false, "Reload the configuration file when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cmdstack - interactive undoable command shell\n\n")
		fmt.Fprintf(os.Stderr, "Usage: cmdstack [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("cmdstack %s (%s)\n", version, commit)
		os.Exit(0)
	}

	return opts
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
