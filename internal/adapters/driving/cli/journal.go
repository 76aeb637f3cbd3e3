package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runninglog/runlog-cli/internal/core/domain"
)

var (
	journalAthleteID int64
	journalOutputDir string
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Regenerate the Markdown journal",
	Long: `Rebuilds the Markdown journal from the JSON artifacts already
exported for the athlete. No network access is made.`,
	RunE: runJournal,
}

func init() {
	journalCmd.Flags().Int64Var(&journalAthleteID, "athlete", 0, "athlete ID (required)")
	journalCmd.Flags().StringVar(&journalOutputDir, "output-dir", "", "directory containing the artifacts")
	_ = journalCmd.MarkFlagRequired("athlete")
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, _ []string) error {
	if journalWriter == nil {
		return errors.New("journal writer not configured")
	}
	if journalAthleteID <= 0 {
		return fmt.Errorf("%w: invalid athlete ID %d", domain.ErrInvalidInput, journalAthleteID)
	}

	dir := athleteDir(journalOutputDir, journalAthleteID)
	path, err := journalWriter(dir)
	if err != nil {
		return fmt.Errorf("write journal: %w", err)
	}

	cmd.Printf("Journal written to %s\n", path)
	return nil
}
