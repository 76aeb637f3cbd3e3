package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driving"
)

// mockExporter implements driving.Exporter for testing.
type mockExporter struct {
	summary   *domain.Summary
	err       error
	gotID     int64
	gotOpts   driving.ExportOptions
	callCount int
}

func (m *mockExporter) StartExport(_ context.Context, athleteID int64, opts driving.ExportOptions) (*domain.Summary, error) {
	m.callCount++
	m.gotID = athleteID
	m.gotOpts = opts
	return m.summary, m.err
}

func (m *mockExporter) Status(_ context.Context, _ int64) (*driving.ExportStatus, error) {
	return &driving.ExportStatus{Phase: driving.PhaseIdle}, nil
}

func okSummary() *domain.Summary {
	return &domain.Summary{
		RunID:      "run-1",
		AthleteID:  7,
		Discovered: 10,
		Succeeded:  4,
		Skipped:    6,
		Duration:   3 * time.Second,
	}
}

// setupExportTest swaps in mock collaborators and plain output, and
// restores everything on cleanup.
func setupExportTest(t *testing.T, exporter *mockExporter) (*bytes.Buffer, string) {
	t.Helper()

	oldFactory := exporterFactory
	oldJournal := journalWriter
	oldRoot := outputRoot
	oldTerminal := stdoutIsTerminal

	var gotDir string
	exporterFactory = func(dir string) (driving.Exporter, error) {
		gotDir = dir
		return exporter, nil
	}
	journalWriter = func(dir string) (string, error) {
		return dir + "/journal.md", nil
	}
	outputRoot = t.TempDir()
	stdoutIsTerminal = func() bool { return false }

	t.Cleanup(func() {
		exporterFactory = oldFactory
		journalWriter = oldJournal
		outputRoot = oldRoot
		stdoutIsTerminal = oldTerminal
		rootCmd.SetArgs(nil)
		exportOutputDir = ""
		exportConcurrency = 0
		exportRefreshAll = false
		exportRefreshWIDs = nil
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	_ = gotDir
	return buf, outputRoot
}

func TestExportCmd_Use(t *testing.T) {
	assert.Equal(t, "export", exportCmd.Use)
}

func TestExportCmd_RunsExport(t *testing.T) {
	exporter := &mockExporter{summary: okSummary()}
	buf, _ := setupExportTest(t, exporter)

	rootCmd.SetArgs([]string{"export", "--athlete", "7"})
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 1, exporter.callCount)
	assert.Equal(t, int64(7), exporter.gotID)
	assert.Contains(t, buf.String(), "Exporting athlete 7")
	assert.Contains(t, buf.String(), "exported 4")
	assert.Contains(t, buf.String(), "already done 6")
	assert.Contains(t, buf.String(), "Journal written to")
}

func TestExportCmd_PassesOverrides(t *testing.T) {
	exporter := &mockExporter{summary: okSummary()}
	setupExportTest(t, exporter)

	rootCmd.SetArgs([]string{
		"export", "--athlete", "7",
		"--concurrency", "3",
		"--refresh-all",
		"--refresh-wids", "11,12",
	})
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 3, exporter.gotOpts.Concurrency)
	assert.True(t, exporter.gotOpts.Overrides.ForceAll)
	assert.Equal(t, []int64{11, 12}, exporter.gotOpts.Overrides.ForceIDs)
}

func TestExportCmd_ReportsFailedItems(t *testing.T) {
	summary := okSummary()
	summary.Failed = []domain.FailedItem{
		{WID: 42, Reason: "HTTP 500"},
		{WID: 43, Reason: "parse error"},
	}
	exporter := &mockExporter{summary: summary}
	buf, _ := setupExportTest(t, exporter)

	rootCmd.SetArgs([]string{"export", "--athlete", "7"})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 workout(s) failed")
	assert.Contains(t, buf.String(), "42: HTTP 500")
	assert.Contains(t, buf.String(), "43: parse error")
	assert.Contains(t, buf.String(), "--refresh-wids")
}

func TestExportCmd_CancelledRunReportsResume(t *testing.T) {
	summary := okSummary()
	summary.Cancelled = true
	exporter := &mockExporter{summary: summary}
	buf, _ := setupExportTest(t, exporter)

	rootCmd.SetArgs([]string{"export", "--athlete", "7"})
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Export cancelled")
	assert.Contains(t, buf.String(), "rerun to resume")
}

func TestExportCmd_RunError(t *testing.T) {
	exporter := &mockExporter{err: errors.New("site unreachable")}
	setupExportTest(t, exporter)

	rootCmd.SetArgs([]string{"export", "--athlete", "7"})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "site unreachable")
}

func TestExportCmd_RejectsInvalidAthlete(t *testing.T) {
	exporter := &mockExporter{summary: okSummary()}
	setupExportTest(t, exporter)

	rootCmd.SetArgs([]string{"export", "--athlete", "0"})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "invalid athlete ID")
	assert.Zero(t, exporter.callCount)
}

func TestExportCmd_NotConfigured(t *testing.T) {
	oldFactory := exporterFactory
	exporterFactory = nil
	defer func() {
		exporterFactory = oldFactory
		rootCmd.SetArgs(nil)
	}()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"export", "--athlete", "7"})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestExportCmd_OutputDirFlagWins(t *testing.T) {
	exporter := &mockExporter{summary: okSummary()}
	var gotDir string
	setupExportTest(t, exporter)
	exporterFactory = func(dir string) (driving.Exporter, error) {
		gotDir = dir
		return exporter, nil
	}

	rootCmd.SetArgs([]string{"export", "--athlete", "7", "--output-dir", "/tmp/custom"})
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom", gotDir)
}
