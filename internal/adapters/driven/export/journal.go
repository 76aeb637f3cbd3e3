package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runninglog/runlog-cli/internal/core/domain"
)

// JournalFileName is the Markdown journal written next to the JSON
// artifacts.
const JournalFileName = "journal.md"

// WriteJournal renders all artifacts in dir into a single Markdown
// journal and writes it alongside them. Returns the journal path.
func WriteJournal(dir string) (string, error) {
	workouts, err := ReadArtifacts(dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, JournalFileName)
	if err := os.WriteFile(path, []byte(RenderJournal(workouts)), 0o644); err != nil {
		return "", fmt.Errorf("write journal: %w", err)
	}
	return path, nil
}

// RenderJournal produces the Markdown journal text: workouts grouped
// under one date header per day, each with its title, conditions, and
// a segment table. Rest entries with no distance or time get no table.
func RenderJournal(workouts []*domain.Workout) string {
	var b strings.Builder
	b.WriteString("# Running Journal\n")

	lastDate := ""
	for _, w := range workouts {
		day := w.Date.Format("2006-01-02")
		if day != lastDate {
			fmt.Fprintf(&b, "\n## %s (%s)\n", day, w.Date.Format("Monday"))
			lastDate = day
		}

		title := w.Title
		if title == "" {
			title = "Untitled workout"
		}
		fmt.Fprintf(&b, "\n### %s\n", title)
		if w.ExerciseType != "" {
			fmt.Fprintf(&b, "\nExercise Type: %s\n", w.ExerciseType)
		}
		if w.Weather != "" {
			fmt.Fprintf(&b, "\nWeather: %s\n", w.Weather)
		}
		if w.Comments != "" {
			fmt.Fprintf(&b, "\nComments: %s\n", w.Comments)
		}
		if w.Empty() {
			continue
		}
		b.WriteString("\n")
		writeSegmentTable(&b, w)
	}
	return b.String()
}

// writeSegmentTable renders the workout's segments as a Markdown
// table. The interval type and shoes columns appear only when some
// segment fills them.
func writeSegmentTable(b *strings.Builder, w *domain.Workout) {
	hasInterval, hasShoes := false, false
	for _, seg := range w.Segments {
		if seg.IntervalType != "" {
			hasInterval = true
		}
		if seg.Shoes != "" {
			hasShoes = true
		}
	}

	header := []string{"Distance (mi)", "Duration", "Pace (/mi)"}
	if hasInterval {
		header = append(header, "Interval Type")
	}
	if hasShoes {
		header = append(header, "Shoes")
	}
	writeTableRow(b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeTableRow(b, sep)

	for _, seg := range w.Segments {
		row := []string{
			formatDistance(seg.DistanceMiles),
			FormatDuration(seg.DurationSeconds),
			FormatPace(seg.DurationSeconds, seg.DistanceMiles),
		}
		if hasInterval {
			row = append(row, seg.IntervalType)
		}
		if hasShoes {
			row = append(row, seg.Shoes)
		}
		writeTableRow(b, row)
	}

	if len(w.Segments) > 1 {
		row := []string{
			formatDistance(w.TotalDistanceMiles()),
			FormatDuration(w.TotalDurationSeconds()),
			FormatPace(w.TotalDurationSeconds(), w.TotalDistanceMiles()),
		}
		if hasInterval {
			row = append(row, "Total")
		}
		if hasShoes {
			row = append(row, "")
		}
		writeTableRow(b, row)
	}
}

func writeTableRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func formatDistance(miles float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", miles), "0"), ".")
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatPace renders the per-mile pace as M:SS, empty when there is no
// distance to pace against.
func FormatPace(durationSeconds int, distanceMiles float64) string {
	if distanceMiles <= 0 || durationSeconds <= 0 {
		return ""
	}
	perMile := int(float64(durationSeconds)/distanceMiles + 0.5)
	return FormatDuration(perMile)
}
