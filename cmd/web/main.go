// Command web serves the cleaned datasets and their analytics over the JSON data API.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"solarcli/internal/app"
	"solarcli/internal/config"
	"solarcli/internal/infrastructure"
)

func main() {
	application, err := newApplication(os.Args[1:], os.Stderr)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}

// newApplication reads the flags and configuration and wires the application.
func newApplication(args []string, stderr io.Writer) (*app.Application, error) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML configuration file")
	port := fs.Int("port", 0, "listen port (overrides the configuration)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return app.NewApplication(cfg, logger)
}
