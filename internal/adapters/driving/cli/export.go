package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driving"
)

var (
	exportAthleteID   int64
	exportOutputDir   string
	exportConcurrency int
	exportRefreshAll  bool
	exportRefreshWIDs []int64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an athlete's workouts",
	Long: `Downloads every workout in the athlete's log as JSON files and
regenerates the Markdown journal.

Only workouts not yet exported are fetched. Use --refresh-all to
re-export everything, or --refresh-wids to re-export specific workouts.
Press Ctrl-C to stop; the export resumes on the next run.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Int64Var(&exportAthleteID, "athlete", 0, "athlete ID to export (required)")
	exportCmd.Flags().StringVar(&exportOutputDir, "output-dir", "", "directory for artifacts (default: per-athlete dir under the output root)")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "concurrent downloads (default 5)")
	exportCmd.Flags().BoolVar(&exportRefreshAll, "refresh-all", false, "re-export every workout")
	exportCmd.Flags().Int64SliceVar(&exportRefreshWIDs, "refresh-wids", nil, "re-export specific workout IDs")
	_ = exportCmd.MarkFlagRequired("athlete")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exporterFactory == nil {
		return errors.New("export service not configured")
	}
	if exportAthleteID <= 0 {
		return fmt.Errorf("%w: invalid athlete ID %d", domain.ErrInvalidInput, exportAthleteID)
	}

	dir := athleteDir(exportOutputDir, exportAthleteID)
	exporter, err := exporterFactory(dir)
	if err != nil {
		return fmt.Errorf("set up export: %w", err)
	}

	// Ctrl-C cancels the run; in-flight downloads finish and the
	// state file keeps everything completed so far.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cmd.Printf("Exporting athlete %d to %s...\n", exportAthleteID, dir)

	summary, err := exporter.StartExport(ctx, exportAthleteID, driving.ExportOptions{
		Concurrency: exportConcurrency,
		Overrides: driving.Overrides{
			ForceAll: exportRefreshAll,
			ForceIDs: exportRefreshWIDs,
		},
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	printSummary(cmd, summary)

	if journalWriter != nil && summary.Succeeded > 0 {
		path, err := journalWriter(dir)
		if err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		cmd.Printf("Journal written to %s\n", path)
	}

	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d workout(s) failed to export", len(summary.Failed))
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary *domain.Summary) {
	cmd.Println()
	if summary.Cancelled {
		cmd.Println(warnText("Export cancelled. Progress has been saved; rerun to resume."))
	}
	cmd.Printf("%s  discovered %d, exported %d, already done %d, failed %d  (%s)\n",
		successText("Done."),
		summary.Discovered, summary.Succeeded, summary.Skipped, len(summary.Failed),
		summary.Duration.Round(10*time.Millisecond))

	if len(summary.Failed) > 0 {
		cmd.Println(errorText("Failed workouts:"))
		for _, item := range summary.Failed {
			cmd.Printf("  %d: %s\n", item.WID, item.Reason)
		}
		cmd.Printf("Re-run with --refresh-wids to retry specific workouts.\n")
	}
}
