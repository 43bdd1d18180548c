package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/chriserikbarnes/medrecpro/internal/config"
	"github.com/chriserikbarnes/medrecpro/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Ingest struct {
		Paths   []string `arg:"" help:"SPL document files to ingest" type:"existingfile"`
		Resolve bool     `help:"Run a pending-reference resolution pass after the last file"`
	} `cmd:"" help:"Ingest SPL documents into the database"`

	Resolve struct{} `cmd:"" help:"Re-attempt all open pending references"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if CLI.Verbose {
		cfg.Logging.Level = string(config.LogLevelDebug)
	}
	cfg.Logging.SetupLogger()
	slog.Debug("medrecpro starting", "version", version.Version, "commit", version.GitCommit)

	runCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch ctx.Command() {
	case "ingest <paths>":
		if err := runIngest(runCtx, cfg, CLI.Ingest.Paths, CLI.Ingest.Resolve); err != nil {
			slog.Error("Ingest failed", "error", err)
			os.Exit(1)
		}
	case "resolve":
		if err := runResolve(runCtx, cfg); err != nil {
			slog.Error("Resolve failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration file created", "path", CLI.Config)
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

// loadConfig reads the configured file, falling back to built-in defaults
// when the default config path does not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(CLI.Config); os.IsNotExist(err) && CLI.Config == "config.yaml" {
		return config.Default(), nil
	}
	return config.Load(CLI.Config)
}
