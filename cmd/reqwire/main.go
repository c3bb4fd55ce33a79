// reqwire: requirements gathering MCP server
//
// Stores projects and requirements, runs guided discovery interviews,
// and renders specification documents. Works over MCP stdio for AI
// hosts and over REST for everything else.
//
// Usage:
//
//	reqwire serve      # Start MCP server (stdio transport)
//	reqwire api        # Start the REST API
//	reqwire migrate    # Import JSON document data into SQLite
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/reqwire/reqwire/internal/api"
	"github.com/reqwire/reqwire/internal/config"
	mcpserver "github.com/reqwire/reqwire/internal/server"
	"github.com/reqwire/reqwire/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "api":
		if err := runAPI(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "migrate":
		if err := runMigrate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
	case "--version", "-v", "version":
		fmt.Printf("reqwire v%s\n", mcpserver.Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// applyFlags overlays command-line flags on the environment config.
func applyFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "Storage backend: sqlite or json")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the stored data")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error")
}

func runServe(args []string) error {
	cfg := config.Load()
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	applyFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// MCP stdio owns stdout; logs go to stderr.
	logger := newLogger(cfg.LogLevel, os.Stderr)

	s, cleanup, err := mcpserver.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	logger.Info().Str("backend", cfg.StorageBackend).Str("dataDir", cfg.DataDir).Msg("mcp server starting")
	return server.ServeStdio(s)
}

func runAPI(args []string) error {
	cfg := config.Load()
	fs := flag.NewFlagSet("api", flag.ExitOnError)
	applyFlags(fs, &cfg)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, os.Stdout)

	store, err := storage.Open(storage.Config{
		Backend: cfg.StorageBackend,
		DataDir: cfg.DataDir,
	}, logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close() //nolint:errcheck

	srv, err := api.NewServer(cfg, store, logger)
	if err != nil {
		return err
	}

	errChannel := make(chan error, 1)
	go srv.Start(errChannel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChannel:
		return err
	case <-sigCh:
		srv.ShutdownGracefully(10 * time.Second)
		return nil
	}
}

func runMigrate(args []string) error {
	cfg := config.Load()
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	applyFlags(fs, &cfg)
	from := fs.String("from", "", "Directory holding projects.json and requirements.json (defaults to the data dir)")
	archive := fs.Bool("archive", true, "Rename the JSON files to *.migrated after a successful import")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, os.Stdout)

	store, err := storage.OpenSQLite(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	defer store.Close() //nolint:errcheck

	dir := *from
	if dir == "" {
		dir = cfg.DataDir
	}

	result, err := store.ImportJSON(context.Background(), dir, *archive)
	if err != nil {
		return fmt.Errorf("importing json data: %w", err)
	}

	logger.Info().
		Int("projects", result.Projects).
		Int("requirements", result.Requirements).
		Int("tags", result.Tags).
		Msg("migration complete")
	return nil
}

func newLogger(level string, out *os.File) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func printUsage() {
	fmt.Fprint(os.Stderr, `reqwire - requirements gathering server

Usage:
  reqwire serve    Start the MCP server on stdio
  reqwire api      Start the REST API
  reqwire migrate  Import JSON document data into SQLite
  reqwire version  Print the version
  reqwire help     Show this help

Common flags:
  --storage    Storage backend: sqlite (default) or json
  --data-dir   Directory holding the stored data
  --log-level  trace, debug, info, warn, error

Environment:
  REQWIRE_STORAGE   Same as --storage
  REQWIRE_DATA_DIR  Same as --data-dir
  PORT              REST API port (default 8080)
  LOG_LEVEL         Same as --log-level
  CORS_ORIGINS      Comma-separated allowed origins for the REST API
`)
}
