// Command runlog exports workouts from running-log.com into local
// JSON artifacts and a Markdown journal.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	configfile "github.com/runninglog/runlog-cli/internal/adapters/driven/config/file"
	"github.com/runninglog/runlog-cli/internal/adapters/driven/export"
	statefile "github.com/runninglog/runlog-cli/internal/adapters/driven/state/file"
	"github.com/runninglog/runlog-cli/internal/adapters/driving/cli"
	"github.com/runninglog/runlog-cli/internal/connectors/runninglog"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
	"github.com/runninglog/runlog-cli/internal/core/ports/driving"
	"github.com/runninglog/runlog-cli/internal/core/services"
	"github.com/runninglog/runlog-cli/internal/ratelimit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cli.SetOutputRoot(outputRoot(cfg))
	cli.SetExporterFactory(exporterFactory(cfg))
	cli.SetStateStoreFactory(func(dir string) (driven.StateStore, error) {
		return statefile.NewStateStore(filepath.Join(dir, "state.json"))
	})
	cli.SetJournalWriter(export.WriteJournal)

	return cli.Execute()
}

// exporterFactory assembles the export pipeline for one athlete
// directory: shared HTTP client, rate limiter, state store, connector,
// artifact writer, and the orchestrator on top.
func exporterFactory(cfg driven.ConfigStore) func(dir string) (driving.Exporter, error) {
	return func(dir string) (driving.Exporter, error) {
		store, err := statefile.NewStateStore(filepath.Join(dir, "state.json"))
		if err != nil {
			return nil, err
		}

		perSecond := cfg.GetFloat(configfile.KeyRatePerSecond)
		if perSecond <= 0 {
			perSecond = ratelimit.DefaultRate
		}
		burst := cfg.GetInt(configfile.KeyRateBurst)
		if burst <= 0 {
			burst = ratelimit.DefaultBurst
		}
		limiter := ratelimit.New(perSecond, burst)

		timeout := time.Duration(cfg.GetInt(configfile.KeyFetchTimeout)) * time.Second
		client := runninglog.NewClient(cfg.GetString(configfile.KeyBaseURL), timeout)

		retry := services.NewRetryPolicy()
		if attempts := cfg.GetInt(configfile.KeyRetryAttempts); attempts > 0 {
			retry.MaxAttempts = attempts
		}

		return services.NewExportOrchestrator(
			runninglog.NewDiscoverer(client, store, limiter, 0),
			runninglog.NewFetcher(client),
			export.NewJSONWriter(dir),
			store,
			nil,
			limiter,
			retry,
		), nil
	}
}

// outputRoot resolves the default export root: config value if set,
// otherwise runninglog-export in the user's home directory.
func outputRoot(cfg driven.ConfigStore) string {
	if root := cfg.GetString(configfile.KeyOutputRoot); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "runninglog-export"
	}
	return filepath.Join(home, "runninglog-export")
}
