// Package cli provides the cobra command tree for the runlog CLI.
// Services are injected by the composition root before Execute runs,
// keeping commands testable with mock collaborators.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
	"github.com/runninglog/runlog-cli/internal/core/ports/driving"
	"github.com/runninglog/runlog-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected collaborators. The exporter and state store depend on the
// athlete's output directory, so the composition root provides
// factories rather than instances.
var (
	exporterFactory   func(outputDir string) (driving.Exporter, error)
	stateStoreFactory func(outputDir string) (driven.StateStore, error)
	journalWriter     func(outputDir string) (string, error)
	outputRoot        string
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "runlog",
	Short: "Export workouts from running-log.com",
	Long: `runlog downloads an athlete's public workout log from running-log.com
into local JSON files and a Markdown journal.

Exports are resumable: progress is tracked in a state file next to the
artifacts, so an interrupted run picks up where it left off.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"print progress details to stderr")
}

// SetExporterFactory injects the export pipeline constructor.
func SetExporterFactory(f func(outputDir string) (driving.Exporter, error)) {
	exporterFactory = f
}

// SetStateStoreFactory injects the state store constructor used by the
// state commands.
func SetStateStoreFactory(f func(outputDir string) (driven.StateStore, error)) {
	stateStoreFactory = f
}

// SetJournalWriter injects the journal generator.
func SetJournalWriter(f func(outputDir string) (string, error)) {
	journalWriter = f
}

// SetOutputRoot sets the default directory exports are written under.
func SetOutputRoot(dir string) {
	outputRoot = dir
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// athleteDir resolves the output directory for one athlete: an
// explicit --output-dir wins, otherwise a per-athlete directory under
// the output root.
func athleteDir(flagDir string, athleteID int64) string {
	if flagDir != "" {
		return flagDir
	}
	return filepath.Join(outputRoot, fmt.Sprintf("athlete_%d", athleteID))
}
