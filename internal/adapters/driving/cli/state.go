package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
)

var (
	stateAthleteID int64
	stateOutputDir string
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset export state",
	Long: `The export state file tracks which workouts have been exported and
which list pages have been scanned. Use these commands to inspect it or
force a full re-export.`,
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show export state for an athlete",
	RunE:  runStateShow,
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear completion state so the next export refetches everything",
	Long: `Clears the done markers. Discovered workout IDs and page bookkeeping
are kept, so the next export re-downloads every known workout without
rescanning the whole list.`,
	RunE: runStateReset,
}

func init() {
	stateCmd.PersistentFlags().Int64Var(&stateAthleteID, "athlete", 0, "athlete ID (required)")
	stateCmd.PersistentFlags().StringVar(&stateOutputDir, "output-dir", "", "directory containing the export")
	_ = stateCmd.MarkPersistentFlagRequired("athlete")
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
	rootCmd.AddCommand(stateCmd)
}

func openStateStore() (driven.StateStore, error) {
	if stateStoreFactory == nil {
		return nil, errors.New("state store not configured")
	}
	if stateAthleteID <= 0 {
		return nil, fmt.Errorf("%w: invalid athlete ID %d", domain.ErrInvalidInput, stateAthleteID)
	}
	return stateStoreFactory(athleteDir(stateOutputDir, stateAthleteID))
}

func runStateShow(cmd *cobra.Command, _ []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}

	state, err := store.State(cmd.Context())
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	cmd.Printf("Athlete %d\n", stateAthleteID)
	cmd.Printf("  Discovered workouts: %d\n", len(state.DiscoveredIDs))
	cmd.Printf("  Exported workouts:   %d\n", len(state.DoneIDs))
	cmd.Printf("  Pending workouts:    %d\n", len(state.DiscoveredIDs)-len(state.DoneIDs))
	cmd.Printf("  List pages scanned:  %d\n", len(state.ProcessedPages))
	return nil
}

func runStateReset(cmd *cobra.Command, _ []string) error {
	store, err := openStateStore()
	if err != nil {
		return err
	}

	if err := store.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("reset state: %w", err)
	}

	cmd.Printf("Export state cleared for athlete %d. The next export refetches every workout.\n", stateAthleteID)
	return nil
}
